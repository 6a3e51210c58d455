package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tesouraria/internal/app"
	"github.com/MrJamesThe3rd/tesouraria/internal/boleto"
	"github.com/MrJamesThe3rd/tesouraria/internal/config"
	"github.com/MrJamesThe3rd/tesouraria/internal/database"
	"github.com/MrJamesThe3rd/tesouraria/internal/period"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "treasury",
		Short:         "Tuition billing operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newGenerateCmd(),
		newReportCmd(),
		newExportCmd(),
		newImportReturnCmd(),
		newDecodeCmd(),
	)

	return root
}

// withApp loads the configuration, opens the database and runs fn with the
// wired services.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, db, err := open()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := app.New(cfg, db)
	if err != nil {
		return err
	}

	return fn(cmd.Context(), a)
}

func open() (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := app.NewLogger(cfg.Log.Level, "text")
	if err != nil {
		return nil, nil, err
	}

	slog.SetDefault(logger)

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return cfg, db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")

			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate the invoices of a billing period",
		Example: "  treasury generate --period 2025-04",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := period.Parse(month)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Generator.GenerateForPeriod(ctx, p)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "period %s: %d created, %d skipped, %d failed\n",
					p, len(res.Created), len(res.Skipped), len(res.Failed))

				for _, f := range res.Failed {
					fmt.Fprintf(out, "  %s: %s\n", f.StudentID, f.Reason)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "period", "", "billing month (YYYY-MM)")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}

type rangeFlags struct {
	month, from, to string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.month, "period", "", "billing month (YYYY-MM)")
	cmd.Flags().StringVar(&f.from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("period", "from")
	cmd.MarkFlagsRequiredTogether("from", "to")
}

func (f *rangeFlags) parse() (period.DateRange, error) {
	return period.ParseRange(f.month, f.from, f.to)
}

func newReportCmd() *cobra.Command {
	var flags rangeFlags

	cmd := &cobra.Command{
		Use:       "report {dre|balance|cashflow}",
		Short:     "Print a ledger report as JSON",
		Example:   "  treasury report dre --period 2025-04\n  treasury report cashflow --from 2025-04-01 --to 2025-04-15",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dre", "balance", "cashflow"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := flags.parse()
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					report any
					err    error
				)

				switch args[0] {
				case "dre":
					report, err = a.Ledger.DRE(ctx, rng)
				case "balance":
					report, err = a.Ledger.BalanceSummary(ctx, rng)
				case "cashflow":
					report, err = a.Ledger.Cashflow(ctx, rng)
				}

				if err != nil {
					return err
				}

				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		flags   rangeFlags
		outPath string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cash book as CSV, or a text summary for e-mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, err := flags.parse()
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if summary {
					entries, err := a.Export.Entries(ctx, rng)
					if err != nil {
						return err
					}

					_, err = io.WriteString(cmd.OutOrStdout(), a.Export.GenerateEmailBody(entries))

					return err
				}

				out := cmd.OutOrStdout()

				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("creating file: %w", err)
					}
					defer f.Close()

					out = f
				}

				n, err := a.Export.WriteCSV(ctx, out, rng)
				if err != nil {
					return err
				}

				slog.Info("cash book exported", "entries", n, "range", rng.String())

				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the CSV to this file instead of stdout")
	cmd.Flags().BoolVar(&summary, "summary", false, "print the e-mail summary instead of CSV")

	return cmd
}

func newImportReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-return <file>",
		Short: "Confirm the payments listed in a bank return file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening return file: %w", err)
			}
			defer f.Close()

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Settlement.Import(ctx, f)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d confirmed, %d duplicate, %d conflict, %d errors\n",
					report.Confirmed, report.Duplicate, report.Conflict, report.Errors)

				for _, row := range report.Rows {
					if row.Error != "" {
						fmt.Fprintf(out, "  line %d (%s): %s\n", row.Line, row.NossoNumero, row.Error)
					}
				}

				return nil
			})
		},
	}
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "decode <digit line>",
		Short:   "Validate a boleto digit line and print its contents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The formatted line has spaces, so an unquoted paste arrives as several args.
			d, err := boleto.NewCodec("").Decode(strings.Join(args, ""))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bank:         %03d\n", d.BankCode)
			fmt.Fprintf(out, "due date:     %s\n", d.DueDate.Format(time.DateOnly))
			fmt.Fprintf(out, "amount:       %s\n", d.Amount.Format())
			fmt.Fprintf(out, "nosso número: %s\n", d.NossoNumero)
			fmt.Fprintf(out, "barcode:      %s\n", d.Barcode)

			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
