package domain

import (
	"encoding/json"
	"time"
)

// Movie is a single catalog record.
type Movie struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Genre     string    `json:"genre" db:"genre"`
	Rating    int       `json:"rating" db:"rating"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MoviePayload is the request body for both create and update. Every field is
// a pointer so an absent field can be told apart from a blank one; partial
// updates only touch the fields that are present.
type MoviePayload struct {
	Title    *string      `json:"title"`
	Genre    *string      `json:"genre"`
	Rating   *json.Number `json:"rating"`
	ImageURL *string      `json:"imageUrl"`
}

// ApplyTo copies the fields present in the payload onto m. The payload must
// have passed validation first.
func (p *MoviePayload) ApplyTo(m *Movie) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Genre != nil {
		m.Genre = *p.Genre
	}
	if p.Rating != nil {
		n, _ := p.Rating.Int64()
		m.Rating = int(n)
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
}

// Stats is the aggregate view over the whole catalog.
type Stats struct {
	Total     int            `json:"total"`
	AvgRating float64        `json:"avgRating"`
	TopGenre  *string        `json:"topGenre"`
	ByGenre   map[string]int `json:"byGenre"`
}
