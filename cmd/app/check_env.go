package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/service-lgtm/pw-next-sub000/internal/config"
)

func newCheckEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-env",
		Short: "Validate the environment and print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Load has applied .env, so the schema check sees the same variables
			warnings, err := config.ValidateEnvWithWarnings()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "WARNING: %s\n", w)
			}
			fmt.Fprintf(out, "environment:      %s\n", cfg.Environment)
			fmt.Fprintf(out, "store driver:     %s\n", cfg.StoreDriver)
			fmt.Fprintf(out, "port:             %d\n", cfg.Port)
			fmt.Fprintf(out, "tick interval:    %s\n", cfg.TickInterval)
			fmt.Fprintf(out, "food/tool/hour:   %s\n", cfg.FoodPerToolHour)
			fmt.Fprintf(out, "durability/hour:  %d\n", cfg.DurabilityPerHour)
			fmt.Fprintf(out, "yld daily limit:  %s (%s)\n", cfg.YLDDailyLimit, cfg.EmissionLocation())

			resources := make([]string, 0, len(cfg.Rates))
			for r := range cfg.Rates {
				resources = append(resources, r)
			}
			sort.Strings(resources)
			for _, r := range resources {
				fmt.Fprintf(out, "rate %-12s %s\n", r+":", cfg.Rates[r])
			}
			return nil
		},
	}
}
