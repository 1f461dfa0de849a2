package main

import (
	"fmt"
	"time"

	"chat-analyzer/chatlog"

	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a CSV or text chat log and print the transcript",
		Long: `Parse a chat log the same way the analyzer does and print the transcript
that would be sent to the model. CSV files need time, author and message
columns; other files are read as lines like "[2024-01-01 10:00] 张三: 你好".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := chatlog.ImportFile(args[0], time.Now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if limit > 0 {
				fmt.Fprintln(out, chatlog.Preview(entries, limit))
			} else {
				fmt.Fprintln(out, chatlog.FormatTranscript(entries))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Only print the first N entries (0 = all)")

	return cmd
}
