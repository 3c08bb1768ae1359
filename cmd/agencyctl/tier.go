package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
)

func tierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tier <active-clients>",
		Short: "Show the referral reward tier for a number of active clients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("active clients must be a non-negative integer, got %q", args[0])
			}
			percent, index := service.LookupTier(n)
			fmt.Fprintf(cmd.OutOrStdout(), "active clients: %d\ntier: %d\npercent: %d%%\n", n, index+1, percent)
			return nil
		},
	}
}
