package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/server/handler"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var (
	listFile     string
	preferences  string
	webhookURL   string
	waitForJob   bool
	pollInterval time.Duration
)

var submitCmd = &cobra.Command{
	Use:   "submit [item...]",
	Short: "Submit a grocery list for cart creation",
	Long: `Submit a grocery list for cart creation.

Items are given as arguments, optionally prefixed with a quantity, or read
from a YAML file holding a list of {name, quantity, unit, preferences}.

Examples:
  cartctl submit "2x whole milk" eggs "1 loaf sourdough bread"
  cartctl submit --file groceries.yaml --preferences "prefer organic" --wait`,
	RunE: runSubmit,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	submitCmd.Flags().StringVarP(&listFile, "file", "f", "", "YAML file with the grocery list")
	submitCmd.Flags().StringVarP(&preferences, "preferences", "p", "", "free-text preferences applied to every item")
	submitCmd.Flags().StringVar(&webhookURL, "webhook", "", "URL notified when the cart is ready")
	submitCmd.Flags().BoolVarP(&waitForJob, "wait", "w", false, "follow the job log until it finishes")
	submitCmd.Flags().DurationVar(&pollInterval, "poll", 2*time.Second, "poll interval used with --wait")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	items, err := collectItems(listFile, args)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items given; pass them as arguments or with --file")
	}

	client := newClientFromFlags()
	resp, err := client.Submit(cmd.Context(), handler.CreateCartRequest{
		Items:       items,
		Preferences: preferences,
		WebhookURL:  webhookURL,
	})
	if err != nil {
		return fmt.Errorf("failed to submit cart job: %w", err)
	}

	successColor.Printf("✓ %s\n", resp.Message)
	fmt.Printf("  Job:       %s\n", boldColor.Sprint(resp.JobID))
	fmt.Printf("  Items:     %d\n", len(items))
	fmt.Printf("  Estimated: %s\n", time.Duration(resp.EstimatedTime)*time.Second)

	if !waitForJob {
		dimColor.Printf("\nFollow it with: cartctl status %s\n", resp.JobID)
		return nil
	}
	fmt.Println()
	return follow(cmd.Context(), client, resp.JobID, pollInterval)
}

// collectItems merges items from the YAML file with those given as arguments.
func collectItems(path string, args []string) ([]core.Item, error) {
	var items []core.Item
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read grocery list: %w", err)
		}
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to parse grocery list %s: %w", path, err)
		}
	}
	for _, arg := range args {
		if item, ok := parseItem(arg); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

var quantityPrefix = regexp.MustCompile(`^(\d+)\s*x?\s+(.+)$`)

// parseItem reads "milk", "2 milk" or "2x milk".
func parseItem(s string) (core.Item, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Item{}, false
	}
	if m := quantityPrefix.FindStringSubmatch(s); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err == nil {
			return core.Item{Name: strings.TrimSpace(m[2]), Quantity: qty}, true
		}
	}
	return core.Item{Name: s}, true
}

// follow polls the job and prints log lines as they appear until the job
// reaches a terminal status.
func follow(ctx context.Context, client *apiClient, id string, every time.Duration) error {
	seen := 0
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		job, err := client.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch job %s: %w", id, err)
		}
		for _, l := range job.Logs[min(seen, len(job.Logs)):] {
			printLog(l)
		}
		seen = len(job.Logs)

		if job.Status.IsTerminal() {
			fmt.Println()
			printOutcome(job)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func printLog(l handler.LogView) {
	ts := dimColor.Sprint(l.Timestamp.Local().Format("15:04:05"))
	switch l.Level {
	case core.LogError:
		fmt.Printf("%s %s\n", ts, errorColor.Sprint(l.Message))
	case core.LogWarning:
		fmt.Printf("%s %s\n", ts, warnColor.Sprint(l.Message))
	default:
		fmt.Printf("%s %s\n", ts, l.Message)
	}
}

func printOutcome(job *handler.JobView) {
	switch job.Status {
	case core.StatusCompleted:
		successColor.Printf("✓ Cart ready: %s\n", job.ShareURL)
	case core.StatusFailed:
		errorColor.Printf("✗ Cart creation failed: %s\n", job.ErrorMessage)
	case core.StatusCancelled:
		warnColor.Println("○ Job was cancelled")
	default:
		fmt.Printf("Job is %s\n", job.Status)
	}
}
