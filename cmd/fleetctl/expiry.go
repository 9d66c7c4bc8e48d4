package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlesng35/fleetcn/internal/app"
	"github.com/charlesng35/fleetcn/internal/app/maintenance"
)

func newExpiryScanCmd(root *rootOptions) *cobra.Command {
	var warnDays int

	cmd := &cobra.Command{
		Use:   "expiry-scan",
		Short: "Run the certificate and licence expiry scan once",
		Long: `Run the certificate and licence expiry scan once.

Users are notified in their inbox; nothing is pushed to live sessions from here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, cfg, err := root.openDatabase(false)
			if err != nil {
				return err
			}
			defer app.CloseDatabase(db)

			if warnDays <= 0 {
				warnDays = cfg.Maintenance.Expiry.WarnDays
			}

			deps, err := maintenance.NewExpiryDependencies(db, nil)
			if err != nil {
				return err
			}
			scanner, err := maintenance.NewExpiryScanner(deps, warnDays, nil)
			if err != nil {
				return err
			}

			report, err := scanner.Scan(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "documents=%d notices=%d skipped=%d\n", report.Documents, report.Notices, report.Skipped)
			return err
		},
	}

	cmd.Flags().IntVar(&warnDays, "warn-days", 0, "Warning window in days (default from configuration)")
	return cmd
}
