// Package llm ranks product candidates with a language model. Model output is
// untrusted: it is parsed and range-checked, and every failure falls back to
// the first candidate.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/cartpilot/internal/core"
)

//go:generate mockgen -destination=../../mocks/mock_completer.go -package=mocks . Completer

// Completer sends a single prompt to a model and returns its reply.
type Completer interface {
	Call(ctx context.Context, prompt string) (string, error)
}

type modelCompleter struct {
	model llms.Model
}

// FromModel adapts a goframe model. A nil model yields a nil Completer.
func FromModel(model llms.Model) Completer {
	if model == nil {
		return nil
	}
	return &modelCompleter{model: model}
}

func (m *modelCompleter) Call(ctx context.Context, prompt string) (string, error) {
	return m.model.Call(ctx, prompt)
}

const (
	fallbackReasoning = "default/first result"
	maxCandidates     = 10
)

// SelectorConfig controls the ranking path.
type SelectorConfig struct {
	Enabled  bool
	Provider ModelProvider
	Timeout  time.Duration
}

// Selector implements core.ProductSelector.
type Selector struct {
	cfg       SelectorConfig
	completer Completer
	prompts   *PromptManager
	logger    *slog.Logger
}

// NewSelector builds a selector. A nil completer or prompt manager leaves
// only the deterministic path available.
func NewSelector(cfg SelectorConfig, completer Completer, prompts *PromptManager, logger *slog.Logger) *Selector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	return &Selector{
		cfg:       cfg,
		completer: completer,
		prompts:   prompts,
		logger:    logger.With("component", "selector"),
	}
}

type promptData struct {
	Item        core.Item
	Quantity    int
	Preferences string
	Candidates  []core.Candidate
}

// Select picks one of at most ten candidates. It never returns an error. With
// no candidates the result carries SelectedIndex -1.
func (s *Selector) Select(ctx context.Context, item core.Item, candidates []core.Candidate, preferences string) (result core.SelectionResult) {
	if len(candidates) == 0 {
		return core.SelectionResult{SelectedIndex: -1, Reasoning: "no candidates", Fallback: true, Warnings: []string{}}
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("product selection panicked, using fallback", "item", item.Name, "panic", r)
			result = fallback(candidates)
		}
	}()

	if !s.cfg.Enabled || s.completer == nil || s.prompts == nil || len(candidates) == 1 {
		return fallback(candidates)
	}

	parsed, err := s.rank(ctx, item, candidates, preferences)
	if err != nil {
		s.logger.Warn("AI selection unusable, using fallback", "item", item.Name, "error", err)
		return fallback(candidates)
	}

	return core.SelectionResult{
		SelectedIndex:   parsed.Index,
		SelectedProduct: candidates[parsed.Index],
		Reasoning:       parsed.Reasoning,
		MatchScore:      parsed.MatchScore,
		Warnings:        parsed.Warnings,
	}
}

func (s *Selector) rank(ctx context.Context, item core.Item, candidates []core.Candidate, preferences string) (*parsedSelection, error) {
	prompt, err := s.prompts.Render(ProductSelectionPrompt, s.cfg.Provider, promptData{
		Item:        item,
		Quantity:    item.EffectiveQuantity(),
		Preferences: preferences,
		Candidates:  trimCandidates(candidates),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render selection prompt: %w", err)
	}

	reply, err := generateWithTimeout(ctx, s.completer, prompt, s.cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("ranking call failed: %w", err)
	}

	return parseSelection(reply, len(candidates))
}

// trimCandidates keeps only the fields the model ranks on.
func trimCandidates(in []core.Candidate) []core.Candidate {
	out := make([]core.Candidate, len(in))
	for i, c := range in {
		out[i] = core.Candidate{
			Title:  c.Title,
			Price:  c.Price,
			Rating: c.Rating,
			Badges: c.Badges,
			Brand:  c.Brand,
			Size:   c.Size,
		}
	}
	return out
}

func fallback(candidates []core.Candidate) core.SelectionResult {
	return core.SelectionResult{
		SelectedIndex:   0,
		SelectedProduct: candidates[0],
		Reasoning:       fallbackReasoning,
		MatchScore:      0,
		Warnings:        []string{},
		Fallback:        true,
	}
}

// generateWithTimeout bounds a model call even when the client ignores
// context cancellation.
func generateWithTimeout(ctx context.Context, c Completer, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- result{err: fmt.Errorf("model call panicked: %v", r)}
			}
		}()
		resp, err := c.Call(ctx, prompt)
		resultCh <- result{resp, err}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
