package store

import (
	"context"
	"errors"

	"movie-catalog-service/internal/domain"
)

var ErrMovieNotFound = errors.New("movie not found")

// MovieListParams carries the filtering, sorting and pagination inputs of a
// list request. The handler layer is responsible for defaults and clamping;
// stores treat the values as already sane.
type MovieListParams struct {
	Page      int
	PageSize  int
	Search    string // case-insensitive substring match on title
	Genre     string // exact match
	SortBy    string // one of sortColumns keys; anything else falls back to createdAt
	Direction string // "asc" or "desc"
}

// sortColumns maps the accepted sort parameter values to table columns.
var sortColumns = map[string]string{
	"title":     "title",
	"genre":     "genre",
	"rating":    "rating",
	"createdAt": "created_at",
}

type MovieStore interface {
	// Create persists a new movie and fills in its ID and CreatedAt.
	Create(ctx context.Context, movie *domain.Movie) error
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	// Update rewrites the full row identified by movie.ID.
	Update(ctx context.Context, movie *domain.Movie) error
	Delete(ctx context.Context, id int64) error
	// List returns one page of matching movies plus the total match count
	// before pagination.
	List(ctx context.Context, params MovieListParams) ([]*domain.Movie, int, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}
