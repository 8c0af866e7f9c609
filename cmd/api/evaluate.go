package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <application-id>",
	Short: "Evaluate one application in the foreground and print the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid application ID %q", args[0])
		}
		return evaluate(cmd, id)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func evaluate(cmd *cobra.Command, id int64) error {
	ctx := context.Background()

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	evaluator, err := d.evaluator(ctx)
	if err != nil {
		return err
	}

	if err := d.queue(evaluator).EvaluateNow(ctx, id); err != nil {
		return err
	}

	app, err := d.apps.FindByID(ctx, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "application %d: %s\n", app.ID, app.Status)
	if app.AIScore != nil {
		fmt.Fprintf(out, "score: %d\n", *app.AIScore)
	}
	if app.AIFeedback != nil {
		fmt.Fprintf(out, "feedback: %s\n", *app.AIFeedback)
	}
	if app.EvaluationError != nil {
		fmt.Fprintf(out, "error: %s\n", *app.EvaluationError)
	}

	return nil
}
