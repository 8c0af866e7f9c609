package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
	"hireny/job-board/internal/models"
	"hireny/job-board/internal/repositories"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample job postings into an empty database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := bootstrap()
		if err != nil {
			return err
		}
		defer d.close()

		n, err := seedJobs(context.Background(), d.jobs, d.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d jobs created\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var sampleJobs = []models.Job{
	{
		Title:        "Backend Engineer",
		Description:  "Design and run the APIs behind our hiring platform.",
		Requirements: "3+ years building HTTP services\nGo or Node.js\nPostgreSQL\nREST API design",
		Location:     "Remote",
		SalaryRange:  "$90k - $120k",
	},
	{
		Title:        "Frontend Developer",
		Description:  "Build the applicant and recruiter dashboards.",
		Requirements: "React and TypeScript\nAccessible UI\nWorking with REST APIs",
		Location:     "Berlin, Germany",
		SalaryRange:  "€60k - €75k",
	},
	{
		Title:        "Data Analyst",
		Description:  "Turn hiring funnel data into decisions.",
		Requirements: "SQL\nPython or R\nDashboarding tools\nClear written communication",
		Location:     "Hybrid - London",
	},
}

// seedJobs inserts the sample postings unless jobs already exist. It returns
// how many were created.
func seedJobs(ctx context.Context, jobs repositories.JobRepository, log *zap.Logger) (int, error) {
	count, err := jobs.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info("jobs table is not empty, skipping seed", zap.Int64("jobs", count))
		return 0, nil
	}

	for i := range sampleJobs {
		job := sampleJobs[i]
		job.CreatedBy = "seed"
		if err := jobs.Create(ctx, &job); err != nil {
			return i, err
		}
		log.Debug("job created", zap.Int64(logger.FieldJobID, job.ID), zap.String("title", job.Title))
	}

	return len(sampleJobs), nil
}
