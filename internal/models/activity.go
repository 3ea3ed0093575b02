package models

import "time"

// Activity is a candidate for the daily pick
type Activity struct {
	ID        string     `json:"id" yaml:"-"`
	Name      string     `json:"name" yaml:"name"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"-"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" yaml:"-"`
}

// HistoryEntry records one pick or reroll result
type HistoryEntry struct {
	ID        string    `json:"id"`
	Activity  string    `json:"activity"`
	Timestamp time.Time `json:"timestamp"`
	Day       string    `json:"day"` // YYYY-MM-DD format, local time
}

// ActivityNames returns the names of the given activities in order.
func ActivityNames(activities []Activity) []string {
	names := make([]string, 0, len(activities))
	for _, a := range activities {
		names = append(names, a.Name)
	}
	return names
}
