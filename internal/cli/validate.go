package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateConfigCommand(a *app) *cobra.Command {
	var extraction bool

	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Check the configuration and load every reference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if extraction {
				if err := a.cfg.ValidateExtraction(); err != nil {
					return err
				}
			}

			_, tables, err := a.buildEngine()
			if err != nil {
				return err
			}

			policy := a.cfg.PolicyConfig()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Configuration OK\n")
			fmt.Fprintf(w, "  sbu ranges:      %d\n", len(tables.SBU))
			fmt.Fprintf(w, "  vendors:         %d\n", len(tables.Vendors))
			fmt.Fprintf(w, "  countries:       %d\n", len(tables.Countries))
			fmt.Fprintf(w, "  po policy:       min %d, width %d, short %s\n", policy.MinDigits, policy.Width, policy.ShortMode)
			fmt.Fprintf(w, "  vendor cutoff:   %d\n", a.cfg.Vendor.Cutoff)
			fmt.Fprintf(w, "  currency:        %s\n", a.cfg.Currency.Default)
			return nil
		},
	}

	cmd.Flags().BoolVar(&extraction, "extraction", false, "also require the vision model settings")
	return cmd
}
