package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/cartpilot/internal/core"
)

var (
	outputJSON bool
	listLimit  int
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Shows one cart job with its log, or lists your recent jobs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClientFromFlags()

		if len(args) == 1 {
			job, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch job: %w", err)
			}
			if outputJSON {
				return printJSON(job)
			}
			titleColor.Printf("Job %s\n", job.JobID)
			fmt.Printf("  Status:   %s\n", statusLabel(job.Status))
			fmt.Printf("  Retailer: %s (%s)\n", job.Retailer, job.Strategy)
			fmt.Printf("  Items:    %d\n", job.ItemCount)
			fmt.Printf("  Created:  %s\n\n", job.CreatedAt.Local().Format(time.RFC822))
			for _, l := range job.Logs {
				printLog(l)
			}
			if job.Status.IsTerminal() {
				fmt.Println()
				printOutcome(job)
			}
			return nil
		}

		list, err := client.List(cmd.Context(), listLimit)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if outputJSON {
			return printJSON(list)
		}
		if list.Total == 0 {
			fmt.Println("No cart jobs yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "JOB\tSTATUS\tITEMS\tCREATED\tCART")
		for _, job := range list.Jobs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				job.JobID,
				job.Status,
				job.ItemCount,
				job.CreatedAt.Local().Format(time.RFC822),
				job.ShareURL,
			)
		}
		return w.Flush()
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancels a cart job that has not started yet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := newClientFromFlags().Cancel(cmd.Context(), args[0])
		if isStatus(err, http.StatusBadRequest) {
			return fmt.Errorf("job %s has already started or finished and can no longer be cancelled", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to cancel job: %w", err)
		}
		successColor.Printf("✓ Job %s cancelled\n", args[0])
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Shows whether the service is up and how busy the queue is",
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := newClientFromFlags().Health(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(h)
		}
		successColor.Printf("● %s\n", h.Status)
		fmt.Printf("  Queued:     %d\n", h.Queue.Queued)
		if h.Queue.Processing {
			fmt.Printf("  Processing: %s\n", h.Queue.CurrentJob)
		} else {
			fmt.Println("  Processing: idle")
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	statusCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "number of jobs to list")
	healthCmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd, cancelCmd, healthCmd)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func statusLabel(s core.Status) string {
	switch s {
	case core.StatusCompleted:
		return successColor.Sprint(s)
	case core.StatusFailed:
		return errorColor.Sprint(s)
	case core.StatusCancelled:
		return warnColor.Sprint(s)
	default:
		return boldColor.Sprint(s)
	}
}
