package inventory

import (
	"context"

	"givelife/pkg/domain"
)

// Source is a Fetcher that can also list the registered hospitals.
type Source interface {
	Fetcher
	Hospitals(ctx context.Context) ([]domain.Hospital, error)
}

// Summarize aggregates the given hospitals, or every hospital src lists when
// ids is empty. names maps hospital ids to display names and is only filled
// when the list was fetched.
func Summarize(ctx context.Context, src Source, ids []string, cfg Config) (Summary, map[string]string, error) {
	names := map[string]string{}
	if len(ids) == 0 {
		hospitals, err := src.Hospitals(ctx)
		if err != nil {
			return Summary{}, nil, err
		}
		for _, h := range hospitals {
			ids = append(ids, h.ID)
			names[h.ID] = h.HospitalName
		}
	}
	return NewAggregator(src, cfg).Aggregate(ctx, ids), names, nil
}
