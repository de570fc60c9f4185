package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/duskward/visioner/cmd/visionerctl/fixture"
	"github.com/duskward/visioner/config"
	"github.com/duskward/visioner/engine"
	"github.com/duskward/visioner/geometry"
	"github.com/duskward/visioner/internal/refscene"
	"github.com/duskward/visioner/sceneapi"
	"github.com/duskward/visioner/visibility"
)

var configFile string

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve live visibility for every ordered token pair in the scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSceneFile(); err != nil {
			return err
		}

		opts := config.Defaults()
		if configFile != "" {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			opts = loaded
		}

		doc, err := fixture.Load(sceneFile)
		if err != nil {
			return err
		}
		scene := doc.Build()
		e := engine.New(scene, refscene.NewMemFlagStore(), opts)

		tokens := scene.TokensInScene()
		sort.Slice(tokens, func(i, j int) bool { return tokens[i].ID < tokens[j].ID })

		useColor := isatty.IsTerminal(os.Stdout.Fd())
		fmt.Fprintf(cmd.OutOrStdout(), "visionerctl session %s: %d tokens\n\n", sessionID, len(tokens))

		for _, observer := range tokens {
			for _, target := range tokens {
				if observer.ID == target.ID {
					continue
				}
				result := e.Resolve(observer.ID, target.ID)
				distance := geometry.RoundDownToSquare(scene.DistanceFeet(observer.Position, target.Position))
				printRow(cmd, observer, target, result, distance, useColor)
			}
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&configFile, "config", "", "path to a YAML config file (defaults to config.Defaults())")
	rootCmd.AddCommand(resolveCmd)
}

func printRow(cmd *cobra.Command, observer, target sceneapi.Token, result visibility.Result, distanceFeet int, useColor bool) {
	label := stateLabel(result.State, useColor)
	detail := ""
	if result.Diagnostic != nil {
		detail = fmt.Sprintf(" (%s: %s)", result.Diagnostic.Reason, result.Diagnostic.Detail)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-12s -> %-12s  %-20s  %s ft via %s%s\n",
		observer.ID, target.ID, label, humanize.Comma(int64(distanceFeet)), orDash(string(result.DetectingSense)), detail)
}

func stateLabel(state visibility.State, useColor bool) string {
	if !useColor {
		return string(state)
	}
	switch state {
	case visibility.Observed:
		return color.GreenString(string(state))
	case visibility.Concealed:
		return color.YellowString(string(state))
	case visibility.Hidden:
		return color.MagentaString(string(state))
	case visibility.Undetected:
		return color.RedString(string(state))
	default:
		return string(state)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
