package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/duskward/visioner/dice"
)

var (
	rollModifier int
	rollDC       int
)

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Roll a single d20 check against a DC and print its outcome band",
	RunE: func(cmd *cobra.Command, args []string) error {
		roller := dice.NewRoller(rand.New(rand.NewSource(rand.Int63())))
		result := roller.RollCheck(rollModifier, rollDC)
		fmt.Fprintf(cmd.OutOrStdout(), "d20(%d) + %d = %d vs DC %d -> %s\n",
			result.Natural, rollModifier, result.Total, result.DC, result.Band)
		return nil
	},
}

func init() {
	rollCmd.Flags().IntVar(&rollModifier, "modifier", 0, "flat modifier added to the d20")
	rollCmd.Flags().IntVar(&rollDC, "dc", 15, "difficulty class to check against")
	rootCmd.AddCommand(rollCmd)
}
