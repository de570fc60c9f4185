// Package cmd implements the visionerctl demo CLI: a small harness that
// loads a YAML scene fixture and drives the engine facade against it,
// standing in for the real host (Foundry) integration.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var sceneFile string

// sessionID tags one invocation's output, the way a host would tag a batch
// of resolved pairs for its own logging.
var sessionID = uuid.NewString()

var rootCmd = &cobra.Command{
	Use:     "visionerctl",
	Short:   "Drive the stealth/perception resolution engine against a YAML scene fixture",
	Long:    "visionerctl loads a scene fixture (tokens, senses, lighting) and runs the\nVisibility Calculator, Feat Engine, and action resolvers against it, the\nway a host application would, without needing a real virtual tabletop.",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sceneFile, "scene", "", "path to a YAML scene fixture (required)")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "visionerctl: %v\n", err)
		os.Exit(1)
	}
}

func requireSceneFile() error {
	if sceneFile == "" {
		return fmt.Errorf("--scene is required")
	}
	return nil
}
