package domain

import "time"

// Day is one unit of a marathon's schedule as the legacy API returns it:
// a raw description plus categorized exercises.
type Day struct {
	ID            int64      `json:"id"`
	DayNumber     int        `json:"dayNumber"`
	Description   string     `json:"description"`
	DayCategories []Category `json:"dayCategories"`
}

// Category groups exercises within a day and carries its own display order.
type Category struct {
	CategoryName string     `json:"categoryName"`
	Order        int        `json:"order"`
	Exercises    []Exercise `json:"exercises"`
}

// Exercise is a single named activity. Order is local to its category.
type Exercise struct {
	ExerciseName     string      `json:"exerciseName"`
	Description      string      `json:"description"`
	Order            int         `json:"order"`
	ExerciseContents []MediaItem `json:"exerciseContents"`
}

// MediaItem is an image or video attached to an exercise. CDNServer is
// transport metadata the legacy API includes; it is dropped on transform.
type MediaItem struct {
	Type        string `json:"type"`
	ContentPath string `json:"contentPath"`
	Order       int    `json:"order"`
	CDNServer   string `json:"cdnServer,omitempty"`
}

// Media is the transformed form of a MediaItem.
type Media struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// TransformedExercise is one entry of a flattened day. CategoryOrder is
// carried alongside the exercise's own order so the total ordering
// (categoryOrder first, then order) can always be recovered.
type TransformedExercise struct {
	CategoryName  string  `json:"categoryName"`
	CategoryOrder int     `json:"categoryOrder"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Order         int     `json:"order"`
	Media         []Media `json:"media"`
}

// TransformedDay is the flattened upload payload for a single day.
type TransformedDay struct {
	DayNumber      int                   `json:"dayNumber"`
	WelcomeMessage string                `json:"welcomeMessage"`
	Exercises      []TransformedExercise `json:"exercises"`
}

// MarathonArchive is the cached per-course payload written by the download
// phase and read back by the upload phase. Days is the canonical field name
// end to end.
type MarathonArchive struct {
	SourceID     string           `json:"sourceId"`
	Title        string           `json:"title"`
	DownloadedAt time.Time        `json:"downloadedAt"`
	Days         []TransformedDay `json:"days"`
}

// CourseMapping links a legacy marathon to its pre-created counterpart in
// the new backend. The destination course must already exist; this mapping
// is the sole link between the two identifier spaces.
type CourseMapping struct {
	SourceID      string `toml:"source_id" json:"sourceId"`
	Title         string `toml:"title" json:"title"`
	DayCount      int    `toml:"day_count" json:"dayCount"`
	DestinationID string `toml:"destination_id" json:"destinationId"`
}

// Mapped reports whether the course has a destination to upload into.
func (m CourseMapping) Mapped() bool {
	return m.DestinationID != ""
}

// DestinationDay is the minimal view of a day record already present in the
// backend, used to decide between create and update.
type DestinationDay struct {
	ID        string `json:"_id"`
	DayNumber int    `json:"dayNumber"`
}
