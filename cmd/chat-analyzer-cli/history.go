package main

import (
	"fmt"

	"chat-analyzer/history"

	"github.com/spf13/cobra"
)

func historyCmd(flags *globalFlags) *cobra.Command {
	var show int
	var markdown bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analysis results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer e.Close()

			store := history.Load(e.paths.History, e.logger)
			records := store.Records()
			out := cmd.OutOrStdout()

			switch {
			case markdown:
				return history.WriteMarkdown(out, records)
			case show > 0:
				rec, ok := store.Get(show - 1)
				if !ok {
					return fmt.Errorf("no history record #%d (have %d)", show, len(records))
				}
				fmt.Fprintln(out, rec.Label())
				fmt.Fprintln(out)
				fmt.Fprintln(out, rec.Result)
				return nil
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No history yet.")
				return nil
			}
			for i, rec := range records {
				fmt.Fprintf(out, "%3d  %s%s%s\n", i+1, colorDim, rec.Label(), colorReset)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&show, "show", 0, "Print the full text of record N")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print all records as Markdown")

	return cmd
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var record int

	cmd := &cobra.Command{
		Use:   "export <out.csv>",
		Short: "Export a stored result to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.selectRecord(record); err != nil {
				return err
			}
			if err := rt.session.ExportCSV(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&record, "record", 0, "History record to export (default latest)")

	return cmd
}
