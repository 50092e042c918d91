package main

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/statemachine"

	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create one order and drive it through PAY and FULFILL",
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := newCompositionRoot()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	orders := app.OrderService()

	o, err := orders.Create(ctx, time.Now())
	if err != nil {
		return err
	}
	logger.Info("order created", "order_id", int64(o.ID()), "state", o.State().String())

	steps := []struct {
		name  string
		apply func() (statemachine.Outcome, error)
	}{
		{"pay", func() (statemachine.Outcome, error) {
			return orders.Pay(ctx, o.ID(), kernel.NewUUID().String())
		}},
		{"fulfill", func() (statemachine.Outcome, error) {
			return orders.Fulfill(ctx, o.ID())
		}},
	}
	for _, step := range steps {
		outcome, err := step.apply()
		if err != nil {
			return fmt.Errorf("%s order %d: %w", step.name, int64(o.ID()), err)
		}
		if outcome.Rejected() {
			return outcome.Err()
		}
		logger.Info("after "+step.name, "order_id", int64(o.ID()), "state", outcome.State().String())
	}

	return nil
}
