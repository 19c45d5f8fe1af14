package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Dan9191/loan-appraisal/internal/amortization"
	"github.com/Dan9191/loan-appraisal/internal/export"
	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	principal string
	rate      string
	term      int
	style     string
	places    int32
	xlsx      string
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "amortize",
		Short:         "Print a loan repayment schedule",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return f.execute(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.principal, "principal", "", "loan principal")
	cmd.Flags().StringVar(&f.rate, "rate", "", "annual interest rate in percent")
	cmd.Flags().IntVar(&f.term, "term", 0, "number of monthly periods")
	cmd.Flags().StringVar(&f.style, "style", string(amortization.EqualPrincipal), "equal_principal or equal_installment")
	cmd.Flags().Int32Var(&f.places, "places", amortization.DefaultPlaces, "decimal places for money amounts")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "also write the schedule to this .xlsx file")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("term")
	return cmd
}

func (f flags) execute(out io.Writer) error {
	principal, err := decimal.NewFromString(f.principal)
	if err != nil {
		return fmt.Errorf("invalid --principal %q: %w", f.principal, err)
	}
	rate, err := decimal.NewFromString(f.rate)
	if err != nil {
		return fmt.Errorf("invalid --rate %q: %w", f.rate, err)
	}
	style, err := amortization.ParseStyle(f.style)
	if err != nil {
		return err
	}
	if f.places < 0 {
		return fmt.Errorf("invalid --places %d", f.places)
	}

	rows, err := amortization.ComputeSchedule(amortization.LoanTerms{
		Principal:   principal,
		AnnualRate:  rate,
		TermPeriods: f.term,
	}, amortization.Options{Style: style, Places: f.places})
	if err != nil {
		return err
	}
	schedule := &models.ScheduleResponse{Style: style, Rows: rows, Summary: amortization.Summarize(rows)}

	if err := export.WriteScheduleTable(out, schedule, f.places); err != nil {
		return err
	}
	if f.xlsx == "" {
		return nil
	}

	file, err := os.Create(f.xlsx)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.xlsx, err)
	}
	if err := export.ScheduleXLSX(file, schedule, f.places); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", f.xlsx, err)
	}
	fmt.Fprintf(out, "\nWrote %s\n", f.xlsx)
	return nil
}
