package store

import (
	"fmt"

	"movie-catalog-service/internal/domain"
)

// SeedMinimum is the record count the catalog is topped up to on startup.
const SeedMinimum = 30

var seedGenres = []string{"Action", "Comedy", "Drama", "Horror", "Sci-Fi", "Romance", "Thriller", "Animation"}

// PlaceholderMovies generates n deterministic placeholder records. The i-th
// record (1-indexed) cycles through the fixed genre list, carries rating
// ((i-1) mod 10) + 1 and a stable image URL embedding the index.
func PlaceholderMovies(n int) []domain.Movie {
	movies := make([]domain.Movie, 0, n)
	for i := 1; i <= n; i++ {
		movies = append(movies, domain.Movie{
			Title:    fmt.Sprintf("Movie %d", i),
			Genre:    seedGenres[(i-1)%len(seedGenres)],
			Rating:   (i-1)%10 + 1,
			ImageURL: fmt.Sprintf("https://via.placeholder.com/300x200.png?text=Movie+%d", i),
		})
	}
	return movies
}
