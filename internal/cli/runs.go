package cli

import (
	"fmt"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/export"
	"github.com/spf13/cobra"
)

func newRunsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect batch runs stored in the results database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the records of a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			run, err := store.Runs().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}

			finished := "unfinished"
			if run.FinishedAt != nil {
				finished = run.FinishedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Run %s started %s, finished %s: %d documents, %d with anomalies\n",
				run.ID, run.StartedAt.Format(time.RFC3339), finished, run.DocumentCount, run.FlaggedCount)

			invoices, err := store.Invoices().ListByRun(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			return export.WriteJSON(cmd.OutOrStdout(), invoices)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "find <invoice-no>",
		Short: "Print every stored record with this invoice number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			invoices, err := store.Invoices().FindByInvoiceNo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return export.WriteJSON(cmd.OutOrStdout(), invoices)
		},
	})
	return cmd
}
