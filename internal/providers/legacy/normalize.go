package legacy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"marathon-migrate/internal/concurrency"
	"marathon-migrate/internal/domain"
)

// StructureResponse is the raw startmarathon payload. Depending on the
// legacy API version it carries exactly one of:
//   - marathonDays: the full day list, categories included
//   - practiceDays: older name for the same full list
//   - marathonDay + dayIds: only the user's "current day" inline; every
//     other day must be fetched individually by id
type StructureResponse struct {
	MarathonDays []domain.Day `json:"marathonDays"`
	PracticeDays []domain.Day `json:"practiceDays"`
	MarathonDay  *domain.Day  `json:"marathonDay"`
	DayIDs       []int64      `json:"dayIds"`
}

// Variant identifies which legacy shape a structure response uses.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantFull
	VariantPractice
	VariantCurrentDay
)

func (v Variant) String() string {
	switch v {
	case VariantFull:
		return "marathonDays"
	case VariantPractice:
		return "practiceDays"
	case VariantCurrentDay:
		return "marathonDay"
	default:
		return "unknown"
	}
}

// ErrUnknownVariant means none of the known day fields were present.
var ErrUnknownVariant = errors.New("structure response matches no known variant")

// Variant classifies the response. Full lists win over the current-day
// shape when both are present (some API versions send both).
func (r StructureResponse) Variant() Variant {
	switch {
	case len(r.MarathonDays) > 0:
		return VariantFull
	case len(r.PracticeDays) > 0:
		return VariantPractice
	case r.MarathonDay != nil:
		return VariantCurrentDay
	default:
		return VariantUnknown
	}
}

// Normalize converts any structure variant into one canonical day list,
// ordered by day number. For the current-day variant the remaining days
// are fetched through fetchDay with a bounded worker pool.
func Normalize(
	ctx context.Context,
	r StructureResponse,
	fetchDay func(ctx context.Context, dayID int64) (domain.Day, error),
	workers int,
) ([]domain.Day, error) {
	switch r.Variant() {
	case VariantFull:
		return canonicalize(r.MarathonDays), nil
	case VariantPractice:
		return canonicalize(r.PracticeDays), nil
	case VariantCurrentDay:
		return normalizeCurrentDay(ctx, r, fetchDay, workers)
	default:
		return nil, ErrUnknownVariant
	}
}

func normalizeCurrentDay(
	ctx context.Context,
	r StructureResponse,
	fetchDay func(ctx context.Context, dayID int64) (domain.Day, error),
	workers int,
) ([]domain.Day, error) {
	current := *r.MarathonDay

	ids := r.DayIDs
	if len(ids) == 0 {
		// nothing else to fetch; the single inline day is the course
		return canonicalize([]domain.Day{current}), nil
	}

	days, errs := concurrency.ProcessParallel(ctx, ids, concurrency.Options{MaxWorkers: workers},
		func(ctx context.Context, _ int, dayID int64) (domain.Day, error) {
			if dayID == current.ID {
				return current, nil
			}
			return fetchDay(ctx, dayID)
		})
	if len(errs) > 0 {
		return nil, fmt.Errorf("fetch %d of %d days: %w", len(errs), len(ids), errs[0])
	}

	return canonicalize(days), nil
}

// canonicalize sorts days by day number and backfills missing numbers from
// position. The legacy API zero-fills dayNumber in some payloads.
func canonicalize(days []domain.Day) []domain.Day {
	out := make([]domain.Day, len(days))
	copy(out, days)
	for i := range out {
		if out[i].DayNumber == 0 {
			out[i].DayNumber = i + 1
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DayNumber < out[j].DayNumber
	})
	return out
}
