// Package seed drives fetch, normalize and upsert for every NFL entity and
// reports per-item outcomes as a Tally.
package seed

import "fmt"

// Tally tracks counts and errors from a load operation. A failed item never
// aborts its batch; it is counted here and iteration continues.
type Tally struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Add merges another Tally into this one.
func (r *Tally) Add(other Tally) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}

// Written is the number of documents created or updated.
func (r *Tally) Written() int {
	return r.Created + r.Updated
}

// AddError records a failed item.
func (r *Tally) AddError(msg string) {
	r.Failed++
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a failed item with a formatted message.
func (r *Tally) AddErrorf(format string, args ...interface{}) {
	r.AddError(fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the load operation.
func (r *Tally) Summary() string {
	return fmt.Sprintf("created=%d updated=%d failed=%d", r.Created, r.Updated, r.Failed)
}

// WeekResult is the outcome of a week refresh.
type WeekResult struct {
	Year         int      `json:"year"`
	SeasonType   int      `json:"season_type"`
	Week         int      `json:"week"`
	Dates        []string `json:"dates"`
	GamesUpdated int      `json:"games_updated"`
	Message      string   `json:"message"`
	Tally        Tally    `json:"tally"`
}
