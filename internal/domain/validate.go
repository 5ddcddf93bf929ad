package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages returned to clients per failing field.
const (
	msgRequired     = "Required"
	msgTitleEmpty   = "Title cannot be empty"
	msgGenreEmpty   = "Genre cannot be empty"
	msgImageURL     = "Provide a valid image URL"
	msgRatingNumber = "Rating must be a number"
	msgRatingRange  = "Rating must be between 1 and 10"
)

// Normalize trims surrounding whitespace on the string fields in place.
func (p *MoviePayload) Normalize() {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}
	if p.Genre != nil {
		g := strings.TrimSpace(*p.Genre)
		p.Genre = &g
	}
	if p.ImageURL != nil {
		u := strings.TrimSpace(*p.ImageURL)
		p.ImageURL = &u
	}
}

// ValidatePayload checks a payload against the movie schema and returns a map
// of field name to error message; an empty map means the payload is valid.
// In full mode (create) every field is required; in partial mode (update) only
// the fields present in the payload are checked. All failing fields are
// collected in one pass.
func ValidatePayload(v *validator.Validate, p *MoviePayload, partial bool) map[string]string {
	p.Normalize()
	fieldErrors := make(map[string]string)

	if !partial {
		if p.Title == nil {
			fieldErrors["title"] = msgRequired
		}
		if p.Genre == nil {
			fieldErrors["genre"] = msgRequired
		}
		if p.Rating == nil {
			fieldErrors["rating"] = msgRequired
		}
		if p.ImageURL == nil {
			fieldErrors["imageUrl"] = msgRequired
		}
	}

	if p.Title != nil && v.Var(*p.Title, "min=1") != nil {
		fieldErrors["title"] = msgTitleEmpty
	}
	if p.Genre != nil && v.Var(*p.Genre, "min=1") != nil {
		fieldErrors["genre"] = msgGenreEmpty
	}
	if p.ImageURL != nil && v.Var(*p.ImageURL, "min=5") != nil {
		fieldErrors["imageUrl"] = msgImageURL
	}
	if p.Rating != nil {
		n, err := p.Rating.Int64()
		if err != nil {
			fieldErrors["rating"] = msgRatingNumber
		} else if v.Var(n, "gte=1,lte=10") != nil {
			fieldErrors["rating"] = msgRatingRange
		}
	}

	return fieldErrors
}
