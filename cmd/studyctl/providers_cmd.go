package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const healthTimeout = 10 * time.Second

func (a *app) providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured AI providers and check the primary one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := a.newRouter()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tPROVIDER\tMODELS")
			for i, name := range router.Names() {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, name, len(router.Models(name)))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()
			if err := router.HealthCheck(ctx); err != nil {
				return fmt.Errorf("primary provider unhealthy: %w", err)
			}
			fmt.Fprintln(out, "\nPrimary provider is healthy.")
			return nil
		},
	}
}
