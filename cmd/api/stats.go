package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hireny/job-board/internal/models"
	"hireny/job-board/internal/repositories"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print application counts per status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := bootstrap()
		if err != nil {
			return err
		}
		defer d.close()

		return printStats(context.Background(), cmd.OutOrStdout(), d.apps)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsOrder = []models.ApplicationStatus{
	models.StatusPending,
	models.StatusEvaluating,
	models.StatusUnderReview,
	models.StatusAccepted,
	models.StatusRejected,
}

func printStats(ctx context.Context, out io.Writer, apps repositories.ApplicationRepository) error {
	counts, err := apps.CountByStatus(ctx)
	if err != nil {
		return err
	}

	var total int64
	for _, status := range statsOrder {
		fmt.Fprintf(out, "%-13s %d\n", status, counts[status])
		total += counts[status]
	}
	fmt.Fprintf(out, "%-13s %d\n", "total", total)

	return nil
}
