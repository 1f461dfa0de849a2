package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// globalFlags are shared by every command
type globalFlags struct {
	configPath string
	dataDir    string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "chat-analyzer-cli",
		Short:         "Summarize chat logs with DeepSeek from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Directory for config, history, archive and logs")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(analyzeCmd(&flags))
	rootCmd.AddCommand(improveCmd(&flags))
	rootCmd.AddCommand(historyCmd(&flags))
	rootCmd.AddCommand(exportCmd(&flags))
	rootCmd.AddCommand(searchCmd(&flags))
	rootCmd.AddCommand(statsCmd(&flags))
	rootCmd.AddCommand(importsCmd(&flags))
	rootCmd.AddCommand(configCmd(&flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
