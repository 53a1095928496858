package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/services"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func invoiceCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Print the photographer payout invoice for a month",
		Long: `Print the invoice for a calendar month. Every completed, QC uploaded or
approved shoot is credited at the configured flat rate; approved payouts
entered by admins are shown alongside.`,
		Example: `  shootdesk invoice --month 2024-06`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			start, end, err := invoicePeriod(month, time.Now().In(cfg.App.Location()))
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := openDatabase(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.close()

			invoiceService := services.NewInvoiceService(db.store, cfg.App.RatePerShoot)
			invoice, err := invoiceService.Compute(ctx, services.SystemSession(), start, end)
			if err != nil {
				return err
			}

			printInvoice(cmd.OutOrStdout(), invoice)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to invoice as YYYY-MM (default: current month)")
	return cmd
}

// invoicePeriod resolves the --month flag, defaulting to the month of now
func invoicePeriod(month string, now time.Time) (models.Date, models.Date, error) {
	if month == "" {
		start, end := models.MonthBounds(now.Year(), now.Month())
		return start, end, nil
	}
	return models.ParseMonth(month)
}

// printInvoice writes the invoice as an aligned table
func printInvoice(w io.Writer, invoice *models.Invoice) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	bold.Fprintf(w, "Invoice %s to %s", invoice.PeriodStart, invoice.PeriodEnd)
	dim.Fprintf(w, " (rate %d per shoot)\n\n", invoice.RatePerShoot)

	if len(invoice.Lines) == 0 {
		dim.Fprintln(w, "No completed shoots in this period.")
		return
	}

	bold.Fprintf(w, "%-28s %7s %10s %9s %12s\n", "PHOTOGRAPHER", "SHOOTS", "PAYOUT", "APPROVED", "APPROVED AMT")
	for _, line := range invoice.Lines {
		name := line.Photographer.Name
		if name == "" {
			name = line.Photographer.ID
		}
		fmt.Fprintf(w, "%-28s %7d %s %9d %12.2f\n",
			truncate(name, 28), line.ShootCount,
			green.Sprintf("%10d", line.TotalPayout),
			line.ApprovedCount, line.ApprovedPayoutTotal,
		)
	}

	fmt.Fprintln(w)
	bold.Fprintf(w, "%-28s %7d %s\n", "TOTAL", invoice.TotalShoots, green.Sprintf("%10d", invoice.TotalPayout))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
