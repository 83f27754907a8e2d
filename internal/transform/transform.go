// Package transform converts the legacy nested day/category/exercise tree
// into the flat, ordered payload the new backend expects. All functions are
// pure and tolerate missing nested slices (they come back empty, not nil
// panics): the legacy API omits arrays instead of sending [].
package transform

import (
	"sort"
	"strings"

	"marathon-migrate/internal/domain"
)

// Day flattens one legacy day: its description becomes the welcome message
// and its categories collapse into a single ordered exercise list.
func Day(d domain.Day) domain.TransformedDay {
	return domain.TransformedDay{
		DayNumber:      d.DayNumber,
		WelcomeMessage: strings.TrimSpace(d.Description),
		Exercises:      Categories(d.DayCategories),
	}
}

// Categories emits one entry per exercise, carrying both the exercise's own
// order and its category's order, then sorts by (categoryOrder, order).
// Ties on both keys keep encounter order; the legacy API does not define a
// tie-break and we do not invent one.
func Categories(cats []domain.Category) []domain.TransformedExercise {
	out := make([]domain.TransformedExercise, 0, totalExercises(cats))
	for _, cat := range cats {
		for _, ex := range cat.Exercises {
			out = append(out, domain.TransformedExercise{
				CategoryName:  cat.CategoryName,
				CategoryOrder: cat.Order,
				Name:          ex.ExerciseName,
				Description:   ex.Description,
				Order:         ex.Order,
				Media:         ExerciseContents(ex.ExerciseContents),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CategoryOrder != out[j].CategoryOrder {
			return out[i].CategoryOrder < out[j].CategoryOrder
		}
		return out[i].Order < out[j].Order
	})

	return out
}

// ExerciseContents sorts an exercise's media by order ascending and maps
// each item to its transformed shape, dropping CDN hints and any other
// transport metadata the upload does not need.
func ExerciseContents(contents []domain.MediaItem) []domain.Media {
	sorted := make([]domain.MediaItem, len(contents))
	copy(sorted, contents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	out := make([]domain.Media, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, domain.Media{
			Type:  m.Type,
			URL:   m.ContentPath,
			Order: m.Order,
		})
	}
	return out
}

func totalExercises(cats []domain.Category) int {
	n := 0
	for _, c := range cats {
		n += len(c.Exercises)
	}
	return n
}
