package main

import (
	"errors"
	"fmt"

	"chat-analyzer/chatlog"

	"github.com/spf13/cobra"
)

func importsCmd(flags *globalFlags) *cobra.Command {
	var limit int
	var show string
	var remove string

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List, show or delete archived chat imports",
		Long:  `List the chat logs kept in the archive. Use --show to print the entries of one import and --delete to remove it; analyses of a deleted import stay searchable.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if show != "" && remove != "" {
				return errors.New("--show and --delete cannot be combined")
			}

			rt, err := openRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			archive, err := rt.requireArchive()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case show != "":
				imp, err := archive.GetImport(show)
				if err != nil {
					return err
				}
				entries, err := archive.ListEntries(imp.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s%s  %d entries  %s%s\n\n", colorDim, imp.Source, imp.EntryCount, imp.CreatedAt.Local().Format(chatlog.TimeLayout), colorReset)
				fmt.Fprintln(out, chatlog.FormatTranscript(entries))
				return nil
			case remove != "":
				if err := archive.DeleteImport(remove); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Deleted import %s\n", remove)
				return nil
			}

			imports, err := archive.ListImports(limit)
			if err != nil {
				return err
			}
			if len(imports) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No imports archived yet.")
				return nil
			}
			for _, imp := range imports {
				fmt.Fprintf(out, "%s  %s%s%s  %d entries  %s\n",
					imp.ID, colorBlue, imp.Source, colorReset, imp.EntryCount, imp.CreatedAt.Local().Format(chatlog.TimeLayout))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of imports to list")
	cmd.Flags().StringVar(&show, "show", "", "Print the entries of import ID")
	cmd.Flags().StringVar(&remove, "delete", "", "Delete import ID and its entries")

	return cmd
}
