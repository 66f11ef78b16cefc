package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/presenter/cmd/presenter/internal/listdemo"
	"github.com/go-drift/presenter/pkg/core"
)

func newDemoCommand(a *app) *cobra.Command {
	var (
		items, cells, steps int
		mode                string
	)
	c := &cobra.Command{
		Use:   "demo",
		Short: "Scroll a recycled list through a pool of cells",
		Long: `Simulate a recycling list.

A data set of --items rows scrolls through --cells pooled views for --steps
steps while a background producer dispatches state changes. Each step prints
the visible cells, and a lifecycle summary is printed at the end.

Modes:
  holder   one long-lived presenter per item; views rebind
  self     each view owns one presenter; reassigning a view replaces it`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reuse, err := listdemo.ParseMode(mode)
			if err != nil {
				return err
			}
			scheduler := core.NewScheduler()
			a.cfg.Apply(scheduler)

			stats, err := listdemo.Run(cmd.Context(), listdemo.Options{
				Items:     items,
				Cells:     cells,
				Steps:     steps,
				Mode:      reuse,
				Scheduler: scheduler,
				Out:       cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	c.Flags().IntVar(&items, "items", 20, "number of list items")
	c.Flags().IntVar(&cells, "cells", 5, "number of pooled cell views")
	c.Flags().IntVar(&steps, "steps", 10, "number of scroll steps")
	c.Flags().StringVar(&mode, "mode", "holder", "reuse mode: holder or self")
	return c
}
