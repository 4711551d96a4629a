package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ramonrsv/f1-data/pkg/jolpica"
)

// Prometheus metrics for multi-page aggregation.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1_pages_fetched_total",
		Help: "Total number of pages fetched by the aggregator",
	})

	aggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_aggregations_total",
		Help: "Total number of aggregations by outcome",
	}, []string{"outcome"})
)

// Aggregation outcomes.
const (
	outcomeSingle       = "single_page"
	outcomeMerged       = "merged"
	outcomeMultiPage    = "multi_page_rejected"
	outcomeExceeded     = "exceeded_max_pages"
	outcomeFetchError   = "fetch_error"
	outcomeInconsistent = "inconsistent"
)

// progressEvery is how often, in pages, progress is logged.
const progressEvery = 10

// PageFetcher is the interface the client must implement for single-page fetching.
type PageFetcher interface {
	// FetchPage fetches and decodes one page of resource.
	FetchPage(ctx context.Context, resource jolpica.Resource, page jolpica.Page) (*jolpica.Response, error)
}

// Aggregator fetches every page of a query and merges them.
type Aggregator struct {
	fetcher PageFetcher
	option  MultiPageOption
	logger  zerolog.Logger
}

// NewAggregator creates an aggregator fetching through fetcher.
func NewAggregator(fetcher PageFetcher, option MultiPageOption) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		option:  option,
		logger:  log.With().Str("component", "f1-pagination").Logger(),
	}
}

// WithLogger returns a copy of a logging to logger.
func (a *Aggregator) WithLogger(logger zerolog.Logger) *Aggregator {
	c := *a
	c.logger = logger
	return &c
}

// Option returns the multi-page option a enforces.
func (a *Aggregator) Option() MultiPageOption {
	return a.option
}

// Fetch returns the complete result of resource. Any page failure aborts the aggregation.
func (a *Aggregator) Fetch(ctx context.Context, resource jolpica.Resource) (*jolpica.Response, error) {
	start := time.Now()

	first, err := a.fetcher.FetchPage(ctx, resource, jolpica.MaxPage())
	if err != nil {
		aggregationsTotal.WithLabelValues(outcomeFetchError).Inc()
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	pagesFetchedTotal.Inc()

	if first.IsSinglePage() {
		aggregationsTotal.WithLabelValues(outcomeSingle).Inc()
		return first, nil
	}

	required := first.PageCount()
	if !a.option.IsEnabled() {
		aggregationsTotal.WithLabelValues(outcomeMultiPage).Inc()
		return nil, fmt.Errorf("%w: %d records over %d pages", ErrMultiPage, first.Total, required)
	}
	maxPages, bounded := a.option.MaxPageCount()
	if bounded && required > maxPages {
		aggregationsTotal.WithLabelValues(outcomeExceeded).Inc()
		return nil, &ExceededMaxPageCountError{Required: required, Max: maxPages}
	}

	a.logger.Debug().
		Str("resource", resource.Kind.String()).
		Uint32("total", first.Total).
		Int("pages", required).
		Msg("Starting multi-page fetch")

	pages := []*jolpica.Response{first}
	current := first.Pagination
	for {
		next, ok := current.NextPage()
		if !ok {
			break
		}
		// The total may grow while paging.
		if bounded && len(pages) >= maxPages {
			aggregationsTotal.WithLabelValues(outcomeExceeded).Inc()
			return nil, &ExceededMaxPageCountError{Required: len(pages) + next.PageCount(), Max: maxPages}
		}

		resp, err := a.fetcher.FetchPage(ctx, resource, jolpica.PageOf(next))
		if err != nil {
			aggregationsTotal.WithLabelValues(outcomeFetchError).Inc()
			return nil, fmt.Errorf("fetch page %d (offset %d): %w", len(pages)+1, next.Offset, err)
		}
		pagesFetchedTotal.Inc()

		// A page that does not start where requested would stall the loop.
		if resp.Offset != next.Offset || resp.Limit == 0 {
			aggregationsTotal.WithLabelValues(outcomeInconsistent).Inc()
			return nil, &InconsistentError{
				Field: "pagination",
				Page:  len(pages) + 1,
				Want:  fmt.Sprintf("offset %d", next.Offset),
				Got:   fmt.Sprintf("%+v", resp.Pagination),
			}
		}

		pages = append(pages, resp)
		current = resp.Pagination

		if len(pages)%progressEvery == 0 {
			a.logger.Debug().
				Int("page", len(pages)).
				Uint32("offset", current.Offset).
				Uint32("total", current.Total).
				Msg("Fetch progress")
		}
	}

	merged, err := Merge(pages)
	if err != nil {
		aggregationsTotal.WithLabelValues(outcomeInconsistent).Inc()
		return nil, err
	}
	aggregationsTotal.WithLabelValues(outcomeMerged).Inc()

	a.logger.Debug().
		Str("resource", resource.Kind.String()).
		Int("pages", len(pages)).
		Uint32("total", merged.Total).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return merged, nil
}
