package main

import (
	"fmt"
	"os"
	"strings"

	"chat-analyzer/db"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	colorReset   = "\033[0m"
	colorBoldRed = "\033[1;31m"
	colorBlue    = "\033[1;34m"
	colorDim     = "\033[2m"
)

func init() {
	// Plain output for pipes
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		colorReset, colorBoldRed, colorBlue, colorDim = "", "", "", ""
	}
}

// highlight marks every case-insensitive occurrence of query in s
func highlight(s, query string) string {
	if colorBoldRed == "" || query == "" {
		return s
	}
	lower, lq := strings.ToLower(s), strings.ToLower(query)
	if len(lower) != len(s) || len(lq) != len(query) {
		return s
	}
	var sb strings.Builder
	for {
		idx := strings.Index(lower, lq)
		if idx < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:idx])
		sb.WriteString(colorBoldRed + s[idx:idx+len(lq)] + colorReset)
		s, lower = s[idx+len(lq):], lower[idx+len(lq):]
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func searchCmd(flags *globalFlags) *cobra.Command {
	var limit int
	var entries bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search archived results, or archived chat entries with --entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			archive, err := rt.requireArchive()
			if err != nil {
				return err
			}

			query := args[0]
			out := cmd.OutOrStdout()

			if entries {
				results, err := archive.SearchEntries(query, limit)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "No results found.")
					return nil
				}
				for _, r := range results {
					fmt.Fprintf(out, "%s%s%s\t%s%s%s\t%s: %s\n",
						colorBlue, r.Source, colorReset,
						colorDim, r.Time, colorReset,
						r.Author, highlight(oneLine(r.Message), query))
				}
				return nil
			}

			results, err := archive.SearchAnalyses(query, limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No results found.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s%s%s\t%s\t%s\n",
					colorDim, r.Analysis.Timestamp, colorReset,
					r.Analysis.Kind,
					highlight(oneLine(r.Snippet), query))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")
	cmd.Flags().BoolVar(&entries, "entries", false, "Search imported chat entries instead of results")

	return cmd
}

func statsCmd(flags *globalFlags) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			archive, err := rt.requireArchive()
			if err != nil {
				return err
			}

			stats, err := archive.GetStats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "History:   %d records (%s)\n", rt.session.History().Len(), rt.paths.History)
			fmt.Fprintf(out, "Archive:   %s (%s)\n", rt.paths.Archive, db.FormatSize(stats.DBSizeBytes))
			fmt.Fprintf(out, "Imports:   %d\n", stats.ImportCount)
			fmt.Fprintf(out, "Entries:   %d\n", stats.EntryCount)
			fmt.Fprintf(out, "Analyses:  %d\n", stats.AnalysisCount)

			if top <= 0 {
				top = 5
			}
			authors, err := archive.GetTopAuthors("", top)
			if err != nil {
				return err
			}
			if len(authors) > 0 {
				fmt.Fprintln(out, "Top authors:")
				for _, a := range authors {
					fmt.Fprintf(out, "  %-12s %d\n", a.Author, a.MessageCount)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "Number of most active authors to list")

	return cmd
}
