package main

import (
	"errors"
	"fmt"

	"chat-analyzer/analyzer"

	"github.com/spf13/cobra"
)

func analyzeCmd(flags *globalFlags) *cobra.Command {
	var prompt string
	var importID string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Summarize a chat log and store the result in the history",
		Long:  `Summarize a chat log file, or with --import an archived import (IDs as listed by "imports"), and store the result in the history.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (importID == "") == (len(args) == 0) {
				return errors.New("give either a chat log file or --import ID")
			}

			rt, err := openRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.useAnalyzer(); err != nil {
				return err
			}

			var n int
			if importID != "" {
				n, err = rt.loadImport(importID)
			} else {
				n, err = rt.session.LoadFile(args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Analyzing %d entries from %s...\n", n, rt.session.Source())

			if !cmd.Flags().Changed("prompt") {
				prompt = rt.config.SystemPrompt
			}
			c, err := rt.await(func(done func(analyzer.Completion)) error {
				return rt.session.StartAnalysis(prompt, done)
			})
			if err != nil {
				return err
			}
			return printCompletion(cmd, c)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "System prompt (defaults to the configured one)")
	cmd.Flags().StringVar(&importID, "import", "", "Analyze an archived import instead of a file")

	return cmd
}

func improveCmd(flags *globalFlags) *cobra.Command {
	var feedback string
	var record int

	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Revise a stored result with feedback",
		Long:  `Revise the latest history record, or the one chosen with --record (numbered as in "history"), and store the revision as a new record.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.useAnalyzer(); err != nil {
				return err
			}
			if err := rt.selectRecord(record); err != nil {
				return err
			}

			c, err := rt.await(func(done func(analyzer.Completion)) error {
				return rt.session.StartImprovement(feedback, done)
			})
			if errors.Is(err, analyzer.ErrNoResult) {
				return errors.New("no analysis result yet, run `analyze` first")
			}
			if err != nil {
				return err
			}
			return printCompletion(cmd, c)
		},
	}

	cmd.Flags().StringVar(&feedback, "feedback", "", "What to change in the result")
	cmd.Flags().IntVar(&record, "record", 0, "History record to revise (default latest)")
	_ = cmd.MarkFlagRequired("feedback")

	return cmd
}

// printCompletion writes the stored text and turns failures into exit errors
func printCompletion(cmd *cobra.Command, c analyzer.Completion) error {
	fmt.Fprintln(cmd.OutOrStdout(), c.Record.Result)

	if c.SaveErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", c.SaveErr)
	}
	if !c.Result.OK() {
		return fmt.Errorf("%s failed: %w", c.Record.Type, c.Result.Err)
	}
	return nil
}
