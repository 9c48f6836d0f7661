package inventory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"givelife/pkg/domain"
)

const defaultConcurrency = 5

// Fetcher loads the inventory rows of one hospital.
type Fetcher interface {
	HospitalInventory(ctx context.Context, hospitalID string) ([]domain.InventoryRow, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, hospitalID string) ([]domain.InventoryRow, error)

func (f FetchFunc) HospitalInventory(ctx context.Context, hospitalID string) ([]domain.InventoryRow, error) {
	return f(ctx, hospitalID)
}

// HospitalResult is the outcome for a single hospital: either its totals or
// the reason it was left out of the aggregate.
type HospitalResult struct {
	HospitalID string `json:"hospitalId"`
	Totals     Totals `json:"totals"`
	Skipped    int    `json:"skippedRows,omitempty"`
	Err        error  `json:"-"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the hospital contributed to the aggregate.
func (r HospitalResult) OK() bool { return r.Err == nil }

// Summary is the aggregate over a list of hospitals.
type Summary struct {
	Totals     Totals           `json:"totals"`
	Hospitals  []HospitalResult `json:"hospitals"`
	Requested  int              `json:"requested"`
	Included   int              `json:"included"`
	Duplicates []string         `json:"duplicates,omitempty"`
}

// Complete reports whether every requested hospital was included.
func (s Summary) Complete() bool { return s.Included == s.Requested }

// Failed returns the hospitals that were left out.
func (s Summary) Failed() []HospitalResult {
	var out []HospitalResult
	for _, h := range s.Hospitals {
		if !h.OK() {
			out = append(out, h)
		}
	}
	return out
}

// Config tunes an Aggregator.
type Config struct {
	// Concurrency bounds simultaneous hospital fetches (default 5).
	Concurrency int
	Logger      *slog.Logger
}

// Aggregator sums inventory across hospitals.
type Aggregator struct {
	fetcher     Fetcher
	concurrency int
	logger      *slog.Logger
}

// NewAggregator constructs an Aggregator over fetcher.
func NewAggregator(fetcher Fetcher, cfg Config) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Aggregator{
		fetcher:     fetcher,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger.With(slog.String("component", "inventory_aggregator")),
	}
}

// Aggregate fetches every distinct hospital and sums their rows per blood
// type. A failed hospital is reported in the summary and never fails the
// whole aggregate. Repeated ids are fetched once and listed in Duplicates.
// Blank ids are ignored.
func (a *Aggregator) Aggregate(ctx context.Context, hospitalIDs []string) Summary {
	start := time.Now()
	defer func() { aggregateDuration.Observe(time.Since(start).Seconds()) }()

	ids, dups := dedupe(hospitalIDs)
	results := make([]HospitalResult, len(ids))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{
		Hospitals:  results,
		Requested:  len(ids),
		Duplicates: dups,
	}
	for _, r := range results {
		if !r.OK() {
			continue
		}
		summary.Totals = summary.Totals.Add(r.Totals)
		summary.Included++
	}
	if !summary.Complete() {
		a.logger.Warn("inventory aggregate is partial",
			slog.Int("included", summary.Included),
			slog.Int("requested", summary.Requested),
		)
	}
	return summary
}

func (a *Aggregator) fetchOne(ctx context.Context, id string) HospitalResult {
	res := HospitalResult{HospitalID: id}
	if err := ctx.Err(); err != nil {
		res.Err, res.Error = err, err.Error()
		hospitalFetchTotal.WithLabelValues("failure").Inc()
		return res
	}
	rows, err := a.fetcher.HospitalInventory(ctx, id)
	if err != nil {
		a.logger.Warn("hospital inventory fetch failed",
			slog.String("hospital_id", id),
			slog.String("error", err.Error()),
		)
		res.Err, res.Error = err, err.Error()
		hospitalFetchTotal.WithLabelValues("failure").Inc()
		return res
	}
	res.Totals, res.Skipped = Sum(rows)
	if res.Skipped > 0 {
		a.logger.Debug("dropped rows with unknown blood type",
			slog.String("hospital_id", id),
			slog.Int("skipped", res.Skipped),
		)
	}
	hospitalFetchTotal.WithLabelValues("success").Inc()
	return res
}

func dedupe(ids []string) (uniq, dups []string) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			dups = append(dups, id)
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return uniq, dups
}
