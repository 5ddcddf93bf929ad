package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"movie-catalog-service/internal/domain"
)

// MemoryMovieStore is an in-memory MovieStore used by tests. It mirrors the
// semantics of the Postgres store: list filtering, the sort whitelist with the
// id tie-break, and the not-found sentinel on update and delete.
type MemoryMovieStore struct {
	mu     sync.RWMutex
	movies map[int64]*domain.Movie
	nextID int64
}

func NewMemoryMovieStore() *MemoryMovieStore {
	return &MemoryMovieStore{movies: make(map[int64]*domain.Movie), nextID: 1}
}

// Seed tops the store up to min records with deterministic placeholders,
// matching PostgresMovieStore.Seed.
func (m *MemoryMovieStore) Seed(ctx context.Context, min int) error {
	count := len(m.movies)
	if count >= min {
		return nil
	}
	placeholders := PlaceholderMovies(min - count)
	for i := range placeholders {
		if err := m.Create(ctx, &placeholders[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	movie.ID = m.nextID
	m.nextID++
	movie.CreatedAt = time.Now().UTC()

	movieCopy := *movie
	m.movies[movie.ID] = &movieCopy
	return nil
}

func (m *MemoryMovieStore) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movie, ok := m.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	movieCopy := *movie
	return &movieCopy, nil
}

func (m *MemoryMovieStore) Update(ctx context.Context, movie *domain.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.movies[movie.ID]; !ok {
		return ErrMovieNotFound
	}
	movieCopy := *movie
	m.movies[movie.ID] = &movieCopy
	return nil
}

func (m *MemoryMovieStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(m.movies, id)
	return nil
}

func (m *MemoryMovieStore) List(ctx context.Context, params MovieListParams) ([]*domain.Movie, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []domain.Movie
	for _, movie := range m.movies {
		if params.Search != "" && !strings.Contains(strings.ToLower(movie.Title), strings.ToLower(params.Search)) {
			continue
		}
		if params.Genre != "" && movie.Genre != params.Genre {
			continue
		}
		filtered = append(filtered, *movie)
	}

	compare := func(a, b *domain.Movie) int {
		var c int
		switch params.SortBy {
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "genre":
			c = strings.Compare(a.Genre, b.Genre)
		case "rating":
			c = a.Rating - b.Rating
		default: // createdAt, or any unrecognized sort key
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			// id tie-break in the same direction
			switch {
			case a.ID < b.ID:
				c = -1
			case a.ID > b.ID:
				c = 1
			}
		}
		return c
	}
	ascending := params.Direction == "asc"
	sort.SliceStable(filtered, func(i, j int) bool {
		if ascending {
			return compare(&filtered[i], &filtered[j]) < 0
		}
		return compare(&filtered[i], &filtered[j]) > 0
	})

	totalCount := len(filtered)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 10
	}
	start := (params.Page - 1) * params.PageSize
	if start >= totalCount {
		return []*domain.Movie{}, totalCount, nil
	}
	end := start + params.PageSize
	if end > totalCount {
		end = totalCount
	}

	page := filtered[start:end]
	result := make([]*domain.Movie, len(page))
	for i := range page {
		movieCopy := page[i]
		result[i] = &movieCopy
	}
	return result, totalCount, nil
}

func (m *MemoryMovieStore) Stats(ctx context.Context) (*domain.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &domain.Stats{ByGenre: make(map[string]int)}
	ratingSum := 0
	for _, movie := range m.movies {
		stats.Total++
		ratingSum += movie.Rating
		stats.ByGenre[movie.Genre]++
	}
	if stats.Total > 0 {
		avg := float64(ratingSum) / float64(stats.Total)
		stats.AvgRating = math.Round(avg*100) / 100
	}

	// Ties fall to whichever genre map iteration yields first.
	topCount := 0
	for genre, count := range stats.ByGenre {
		if count > topCount {
			topCount = count
			topGenre := genre
			stats.TopGenre = &topGenre
		}
	}
	return stats, nil
}
