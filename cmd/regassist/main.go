package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "regassist",
	Short: "Question answering over student achievement records",
	Long: `regassist answers natural-language questions about student achievement
records: single-student portfolio summaries, filtered listings, and
aggregate analysis, backed by a local Ollama runtime.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the regassist version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("regassist version %s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(startCmd, stopCmd, statusCmd, askCmd, reindexCmd, configCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
