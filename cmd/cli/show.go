package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/server/handler"
)

var showCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Renders a cart job report with the selected products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := newClientFromFlags().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch job: %w", err)
		}

		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		out, err := renderer.Render(jobReport(job))
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(showCmd)
}

// jobReport formats a job as markdown.
func jobReport(job *handler.JobView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cart job `%s`\n\n", job.JobID)
	fmt.Fprintf(&b, "**Status:** %s  \n", job.Status)
	fmt.Fprintf(&b, "**Retailer:** %s  \n", job.Retailer)
	fmt.Fprintf(&b, "**Created:** %s  \n", job.CreatedAt.Local().Format(time.RFC1123))
	if job.CompletedAt != nil {
		fmt.Fprintf(&b, "**Finished:** %s  \n", job.CompletedAt.Local().Format(time.RFC1123))
	}
	b.WriteString("\n")

	switch job.Status {
	case core.StatusCompleted:
		fmt.Fprintf(&b, "[Open cart](%s)\n\n", job.ShareURL)
	case core.StatusFailed:
		fmt.Fprintf(&b, "> %s\n\n", job.ErrorMessage)
	}

	if len(job.SelectedProducts) > 0 {
		b.WriteString("## Selected products\n\n")
		b.WriteString("| Requested | Selected | Qty | Price | Score |\n|---|---|---|---|---|\n")
		for _, p := range job.SelectedProducts {
			score := "-"
			if p.MatchScore > 0 {
				score = fmt.Sprintf("%d", p.MatchScore)
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
				escapeCell(p.Requested), escapeCell(p.Selected), p.Quantity, escapeCell(p.Price), score)
		}
		b.WriteString("\n")
	} else if len(job.Items) > 0 {
		b.WriteString("## Items\n\n")
		for _, item := range job.Items {
			fmt.Fprintf(&b, "- %s × %d\n", item.Name, item.EffectiveQuantity())
		}
		b.WriteString("\n")
	}

	if len(job.Logs) > 0 {
		b.WriteString("## Log\n\n")
		for _, l := range job.Logs {
			marker := ""
			switch l.Level {
			case core.LogWarning:
				marker = "⚠ "
			case core.LogError:
				marker = "✗ "
			}
			fmt.Fprintf(&b, "- `%s` %s%s\n", l.Timestamp.Local().Format("15:04:05"), marker, l.Message)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
