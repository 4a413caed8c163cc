package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	var caseReference string

	cmd := &cobra.Command{
		Use:   "ingest <document-key>",
		Short: "Queue an object-store document for ingestion",
		Long:  "Queues the PDF stored under the given object-store key for the\ningestion worker. The case reference is detected from the document\nunless --case-reference pins it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if err := cliCtx.Client.Cases().Ingest(cmd.Context(), args[0], caseReference); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&caseReference, "case-reference", "", "pin the case reference instead of detecting it")
	return cmd
}

func newCaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Inspect stored cases",
	}

	get := &cobra.Command{
		Use:   "get <reference>",
		Short: "Fetch one case record with its ingestion status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			rec, err := cliCtx.Client.Cases().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, rec)
		},
	}

	cmd.AddCommand(get)
	return cmd
}
