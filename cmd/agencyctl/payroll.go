package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
)

func payrollCmd() *cobra.Command {
	var (
		orgFlag   string
		monthFlag string
		snapshot  bool
	)

	cmd := &cobra.Command{
		Use:   "payroll <user-id>",
		Short: "Calculate a member's payroll for a month",
		Long: `Calculate base salary, KPI and bonuses of one member for a month.

Examples:
  agencyctl payroll 6f1c... --org 2b7e... --month 2024-03
  agencyctl payroll 6f1c... --org 2b7e... --snapshot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			orgID, err := uuid.Parse(orgFlag)
			if err != nil {
				return fmt.Errorf("invalid --org: %w", err)
			}
			month := domain.MonthOf(time.Now().UTC())
			if monthFlag != "" {
				if month, err = domain.ParseMonth(monthFlag); err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			queries := repository.New(pool)
			bonuses := service.NewBonusService(queries)
			payroll := service.NewPayrollService(queries,
				service.NewContentPayroll(queries, nil, cfg.ContentPayrollPolicy), bonuses)

			res, err := payroll.CalculateForUser(ctx, orgID, userID, month)
			if err != nil {
				return err
			}
			printPayroll(cmd.OutOrStdout(), res)

			if !snapshot {
				return nil
			}
			rec, err := payroll.Snapshot(ctx, orgID, userID, month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nsnapshot saved, balance %s\n", rec.Balance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&orgFlag, "org", "", "organization id (required)")
	cmd.Flags().StringVar(&monthFlag, "month", "", "month as YYYY-MM, defaults to the current month")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "store the result as the payroll record of the month")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

func printPayroll(w io.Writer, res *domain.PayrollResult) {
	fmt.Fprintf(w, "user %s, month %s\n\n", res.UserID, res.Month)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tLABEL\tQTY\tRATE\tAMOUNT")
	for _, d := range res.Details {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Kind, d.Label, d.Quantity.String(), d.Rate.StringFixed(2), d.Amount.StringFixed(2))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nbase:    %s\nkpi:     %s\nbonuses: %s\ntotal:   %s\n",
		res.BaseSalary.StringFixed(2), res.KPIEarned.StringFixed(2),
		res.BonusesEarned.StringFixed(2), res.TotalEarnings.StringFixed(2))
}
