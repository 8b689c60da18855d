package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/ulid"
)

// ErrNoProviders is returned when a run is requested with no resolvable
// providers at all. This is the only fatal failure mode of a run; every
// per-provider failure is absorbed into a non-voting Review instead.
var ErrNoProviders = errors.New("no review providers available")

// Adapter is one review backend. Implementations must never panic or leak
// failures: every failure mode is converted into a Review with a non-voting
// verdict. The returned Review is fully populated in all cases.
type Adapter interface {
	// Name returns the provider id (e.g. "claude")
	Name() string

	// Model returns the configured model identifier
	Model() string

	// Review reviews the diff and returns exactly one Review
	Review(ctx context.Context, diff string, rc *Context) *Review
}

// Registry resolves provider names to adapters. The orchestrator treats it
// as read-only; it is the only object shared across dispatch tasks.
type Registry interface {
	// Enabled returns the ids of all usable providers, sorted
	Enabled() []string

	// Resolve returns the adapter for a provider id
	Resolve(name string) (Adapter, error)
}

// Options tunes a single run. Zero values fall back to the service's
// configured defaults.
type Options struct {
	Providers []string      // Explicit provider selection (empty = all enabled)
	Threshold float64       // Agreement threshold override
	Timeout   time.Duration // Per-provider timeout override
}

// Service orchestrates a review run: fan-out to providers, fan-in of all
// results, then consensus and issue aggregation over the complete set.
type Service struct {
	registry  Registry
	threshold float64
	timeout   time.Duration
	logger    *loggy.Logger
}

// NewService creates the orchestration service.
func NewService(registry Registry, threshold float64, timeout time.Duration, logger *loggy.Logger) *Service {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Service{
		registry:  registry,
		threshold: threshold,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run dispatches one review per selected provider concurrently, waits for
// every task to finish or time out, and reduces the full result set to a
// single AggregatedResult. A slow or failing provider never affects the
// others; the final result is a pure function of the set of Reviews.
func (s *Service) Run(ctx context.Context, diff string, rc *Context, opts Options) (*AggregatedResult, error) {
	names := opts.Providers
	if len(names) == 0 {
		names = s.registry.Enabled()
	}
	if len(names) == 0 {
		return nil, ErrNoProviders
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}

	runID := ulid.RunID()
	s.logger.Info("starting review run",
		"run_id", runID,
		"providers", names,
		"timeout", timeout,
		"diff_bytes", len(diff))

	var adapters []Adapter
	var reviews []*Review

	for _, name := range names {
		adapter, err := s.registry.Resolve(name)
		if err != nil {
			// An unresolvable explicit provider fails only itself, not the run.
			s.logger.Warn("provider not resolvable", "provider", name, "error", err)
			reviews = append(reviews, NewErrorReview(name, "", VerdictErrorService,
				fmt.Sprintf("provider not available: %v", err), 0))
			continue
		}
		adapters = append(adapters, adapter)
	}

	if len(adapters) == 0 && len(reviews) == 0 {
		return nil, ErrNoProviders
	}

	results := make(chan *Review, len(adapters))
	var wg sync.WaitGroup

	for _, adapter := range adapters {
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			results <- s.dispatch(ctx, a, diff, rc, timeout)
		}(adapter)
	}

	// Join on every task; no short-circuit on first failure or success, so a
	// late critical-severity verdict still influences the outcome.
	wg.Wait()
	close(results)

	for r := range results {
		reviews = append(reviews, r)
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].Provider < reviews[j].Provider
	})

	return s.aggregate(runID, reviews, opts), nil
}

// dispatch runs one provider task under its own timeout. A panic or nil
// result from an adapter is converted to a service-error review so a broken
// adapter can never take down the join.
func (s *Service) dispatch(ctx context.Context, adapter Adapter, diff string, rc *Context, timeout time.Duration) (result *Review) {
	started := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("provider panicked", "provider", adapter.Name(), "panic", rec)
			result = NewErrorReview(adapter.Name(), adapter.Model(), VerdictErrorService,
				fmt.Sprintf("provider panic: %v", rec), time.Since(started))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result = adapter.Review(callCtx, diff, rc)
	if result == nil {
		result = NewErrorReview(adapter.Name(), adapter.Model(), VerdictErrorService,
			"provider returned no review", time.Since(started))
	}

	s.logger.Debug("provider finished",
		"provider", result.Provider,
		"verdict", result.Verdict,
		"issues", len(result.Issues),
		"duration", result.Duration)

	return result
}

// aggregate reduces the complete review set to the final result.
func (s *Service) aggregate(runID string, reviews []*Review, opts Options) *AggregatedResult {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = s.threshold
	}

	consensus := NewCalculator(threshold).Calculate(reviews)
	issues := MergeIssues(reviews)

	providers := make([]ProviderSummary, 0, len(reviews))
	for _, r := range reviews {
		providers = append(providers, ProviderSummary{
			Provider:   r.Provider,
			Model:      r.Model,
			Verdict:    r.Verdict,
			Confidence: r.Confidence,
			IssueCount: len(r.Issues),
			DurationMS: r.DurationMS,
			Error:      r.Error,
		})
	}

	result := &AggregatedResult{
		RunID:           runID,
		Consensus:       consensus,
		Issues:          issues,
		IssueStats:      ComputeIssueStats(issues),
		Providers:       providers,
		CombinedSummary: BuildCombinedSummary(consensus, reviews),
	}

	s.logger.Info("review run complete",
		"run_id", runID,
		"verdict", consensus.Verdict,
		"no_consensus", consensus.NoConsensus,
		"voting", consensus.VotingCount,
		"total", consensus.TotalCount,
		"merged_issues", len(issues))

	return result
}
