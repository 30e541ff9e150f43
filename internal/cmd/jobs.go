package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/kbconsole/internal/api"
)

// JobsCmd returns the `kbconsole jobs` command group.
func JobsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger backend pipeline jobs",
	}
	cmd.AddCommand(jobsAggregateCmd(env))
	cmd.AddCommand(jobsExtractCmd(env))
	cmd.AddCommand(jobsCompareSyncCmd(env))
	return cmd
}

func printJob(cmd *cobra.Command, name string, res *api.JobTriggerResponse) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s started: job %s\n", name, res.JobID)
	if res.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	}
}

func jobsAggregateCmd(env *Env) *cobra.Command {
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate recent conversations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if since <= 0 {
				return fmt.Errorf("--since must be positive")
			}
			s, err := env.Session()
			if err != nil {
				return err
			}
			end := time.Now().UTC()
			res, err := s.Client.TriggerAggregation(api.AggregationInput{StartTime: end.Add(-since), EndTime: end})
			if err != nil {
				return guarded(s, fmt.Errorf("trigger aggregation: %w", err))
			}
			printJob(cmd, "aggregation", res)
			return nil
		},
	}
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "window length ending now")
	return cmd
}

func jobsExtractCmd(env *Env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract FAQ candidates from aggregated conversations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := env.Session()
			if err != nil {
				return err
			}
			var in api.ExtractionInput
			if limit > 0 {
				in.Limit = &limit
			}
			res, err := s.Client.TriggerExtraction(in)
			if err != nil {
				return guarded(s, fmt.Errorf("trigger extraction: %w", err))
			}
			printJob(cmd, "extraction", res)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max conversations to read (0 = all)")
	return cmd
}

func jobsCompareSyncCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "compare-sync",
		Short: "Compare local knowledge with the downstream knowledge base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := env.Session()
			if err != nil {
				return err
			}
			res, err := s.Client.TriggerCompareKBSync()
			if err != nil {
				return guarded(s, fmt.Errorf("trigger compare: %w", err))
			}
			printJob(cmd, "comparison", res)
			return nil
		},
	}
}
