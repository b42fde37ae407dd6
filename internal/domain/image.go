package domain

import "time"

// Image is one persisted generated asset tied to a single prompt within a
// job. Seq starts at 1 and matches the prompt's position in the set, so
// filenames and archive ordering stay deterministic. Rows are append-only;
// they are only ever deleted in bulk.
type Image struct {
	ID         string
	JobID      string
	Seq        int
	PromptText string
	Path       string
	Width      int
	Height     int
	CreatedAt  time.Time
}
