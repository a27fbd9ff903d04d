package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	portFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "study-quiz-service",
	Short: "Quiz study service with reading material, timed questions and custom quiz authoring",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultEnv("CONFIG_PATH", "config/config.yaml"), "path to the YAML config file")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func defaultEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
