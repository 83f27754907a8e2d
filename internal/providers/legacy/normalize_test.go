package legacy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"marathon-migrate/internal/domain"
)

func noFetch(t *testing.T) func(context.Context, int64) (domain.Day, error) {
	return func(ctx context.Context, dayID int64) (domain.Day, error) {
		t.Fatalf("unexpected fetch for day %d", dayID)
		return domain.Day{}, nil
	}
}

func TestVariantClassification(t *testing.T) {
	cases := []struct {
		name string
		resp StructureResponse
		want Variant
	}{
		{"full", StructureResponse{MarathonDays: []domain.Day{{ID: 1}}}, VariantFull},
		{"practice", StructureResponse{PracticeDays: []domain.Day{{ID: 1}}}, VariantPractice},
		{"current", StructureResponse{MarathonDay: &domain.Day{ID: 1}}, VariantCurrentDay},
		{"empty", StructureResponse{}, VariantUnknown},
		{"full wins over current", StructureResponse{
			MarathonDays: []domain.Day{{ID: 1}},
			MarathonDay:  &domain.Day{ID: 2},
		}, VariantFull},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.resp.Variant(); got != c.want {
				t.Errorf("Variant() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestNormalizeFullVariantSortsByDayNumber(t *testing.T) {
	resp := StructureResponse{MarathonDays: []domain.Day{
		{ID: 3, DayNumber: 3},
		{ID: 1, DayNumber: 1},
		{ID: 2, DayNumber: 2},
	}}

	days, err := Normalize(context.Background(), resp, noFetch(t), 2)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for i, d := range days {
		if d.DayNumber != i+1 {
			t.Errorf("day %d has number %d", i, d.DayNumber)
		}
	}
}

func TestNormalizeBackfillsDayNumbers(t *testing.T) {
	resp := StructureResponse{PracticeDays: []domain.Day{
		{ID: 10},
		{ID: 11},
	}}

	days, err := Normalize(context.Background(), resp, noFetch(t), 2)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if days[0].DayNumber != 1 || days[1].DayNumber != 2 {
		t.Errorf("expected backfilled numbers 1,2, got %d,%d", days[0].DayNumber, days[1].DayNumber)
	}
}

func TestNormalizeCurrentDayFetchesRemaining(t *testing.T) {
	resp := StructureResponse{
		MarathonDay: &domain.Day{ID: 21, DayNumber: 1, Description: "inline"},
		DayIDs:      []int64{21, 22, 23},
	}

	fetched := map[int64]bool{}
	days, err := Normalize(context.Background(), resp,
		func(ctx context.Context, dayID int64) (domain.Day, error) {
			fetched[dayID] = true
			return domain.Day{ID: dayID, DayNumber: int(dayID - 20)}, nil
		}, 2)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if fetched[21] {
		t.Error("inline current day was re-fetched")
	}
	if !fetched[22] || !fetched[23] {
		t.Errorf("missing fetches: %v", fetched)
	}
	if days[0].Description != "inline" {
		t.Errorf("expected inline day first, got %+v", days[0])
	}
}

func TestNormalizeCurrentDayWithoutIDList(t *testing.T) {
	resp := StructureResponse{MarathonDay: &domain.Day{ID: 5, Description: "only day"}}

	days, err := Normalize(context.Background(), resp, noFetch(t), 2)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(days) != 1 || days[0].Description != "only day" {
		t.Errorf("unexpected days %+v", days)
	}
	if days[0].DayNumber != 1 {
		t.Errorf("expected backfilled day number 1, got %d", days[0].DayNumber)
	}
}

func TestNormalizeCurrentDayFetchFailure(t *testing.T) {
	resp := StructureResponse{
		MarathonDay: &domain.Day{ID: 1, DayNumber: 1},
		DayIDs:      []int64{1, 2},
	}

	_, err := Normalize(context.Background(), resp,
		func(ctx context.Context, dayID int64) (domain.Day, error) {
			return domain.Day{}, fmt.Errorf("day %d unavailable", dayID)
		}, 2)
	if err == nil {
		t.Fatal("expected error when a day fetch fails")
	}
}

func TestNormalizeUnknownVariant(t *testing.T) {
	_, err := Normalize(context.Background(), StructureResponse{}, noFetch(t), 2)
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}
