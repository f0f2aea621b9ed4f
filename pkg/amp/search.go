package amp

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"go.uber.org/zap"

	"github.com/akhildatla/intcode/pkg/permute"
)

// Result is the signal produced by one phase ordering.
type Result struct {
	Phases []int64
	Signal int64
}

// PhaseString formats the ordering as comma-separated settings.
func (r Result) PhaseString() string {
	parts := make([]string, len(r.Phases))
	for i, p := range r.Phases {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ",")
}

// SearchResult holds every ordering tried and the best among them.
type SearchResult struct {
	Best    Result
	Results []Result // in enumeration order
}

// Search runs the loop once for every ordering of phases and returns the
// maximum signal. Ties keep the ordering found first. Any machine error
// aborts the search.
func (l *Loop) Search(ctx context.Context, phases []int64) (*SearchResult, error) {
	if len(phases) == 0 {
		return nil, ErrNoPhases
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res := &SearchResult{
		Results: make([]Result, 0, permute.Count(len(phases))),
	}
	for ordering := range permute.Permutations(phases) {
		signal, err := l.Run(ctx, ordering)
		if err != nil {
			return nil, fmt.Errorf("phases %v: %w", ordering, err)
		}
		r := Result{Phases: ordering, Signal: signal}
		if len(res.Results) == 0 || signal > res.Best.Signal {
			res.Best = r
		}
		res.Results = append(res.Results, r)
	}

	l.log.Debug("search finished",
		zap.Int("orderings", len(res.Results)),
		zap.Int64s("best_phases", res.Best.Phases),
		zap.Int64("best_signal", res.Best.Signal))
	return res, nil
}

// Top returns the n strongest results, strongest first. Equal signals keep
// enumeration order.
func (s *SearchResult) Top(n int) []Result {
	ranked := make([]Result, len(s.Results))
	copy(ranked, s.Results)
	slices.SortStableFunc(ranked, func(a, b Result) int {
		return cmp.Compare(b.Signal, a.Signal)
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Frame returns the results as a DataFrame with columns "phases" and
// "signal", sorted by signal descending.
func (s *SearchResult) Frame(ctx context.Context) *dataframe.DataFrame {
	if ctx == nil {
		ctx = context.Background()
	}
	phases := dataframe.NewSeriesString("phases", &dataframe.SeriesInit{Capacity: len(s.Results)})
	signals := dataframe.NewSeriesInt64("signal", &dataframe.SeriesInit{Capacity: len(s.Results)})
	for _, r := range s.Results {
		phases.Append(r.PhaseString())
		signals.Append(r.Signal)
	}

	df := dataframe.NewDataFrame(phases, signals)
	df.Sort(ctx, []dataframe.SortKey{{Key: "signal", Desc: true}})
	return df
}

// WriteCSV exports Frame as CSV.
func (s *SearchResult) WriteCSV(ctx context.Context, w io.Writer) error {
	return exports.ExportToCSV(ctx, w, s.Frame(ctx))
}
