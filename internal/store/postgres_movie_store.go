package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"movie-catalog-service/internal/domain"

	"github.com/jmoiron/sqlx"
)

// PostgresMovieStore implements MovieStore on top of PostgreSQL.
type PostgresMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresMovieStore creates a new PostgresMovieStore instance.
func NewPostgresMovieStore(db *sqlx.DB, logger *slog.Logger) (*PostgresMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresMovieStore{db: db, logger: logger}, nil
}

const createTableQuery = `
CREATE TABLE IF NOT EXISTS movies (
    id         BIGSERIAL   PRIMARY KEY,
    title      TEXT        NOT NULL,
    genre      TEXT        NOT NULL,
    rating     INTEGER     NOT NULL,
    image_url  TEXT        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the movies table if it does not exist yet.
func (s *PostgresMovieStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create movies table: %w", err)
	}
	return nil
}

// Seed tops the table up to min records with deterministic placeholders.
// It is a no-op when the table already holds at least min records, so calling
// it on every startup is safe.
func (s *PostgresMovieStore) Seed(ctx context.Context, min int) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM movies`); err != nil {
		return fmt.Errorf("failed to count movies: %w", err)
	}
	if count >= min {
		return nil
	}

	placeholders := PlaceholderMovies(min - count)
	for i := range placeholders {
		if err := s.Create(ctx, &placeholders[i]); err != nil {
			return fmt.Errorf("failed to seed movies: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "Seeded placeholder movies", slog.Int("inserted", len(placeholders)), slog.Int("existing", count))
	return nil
}

// Create inserts a new movie and fills in the assigned ID and CreatedAt.
func (s *PostgresMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	query := `INSERT INTO movies (title, genre, rating, image_url, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`

	movie.CreatedAt = time.Now().UTC()

	s.logger.DebugContext(ctx, "Executing Create movie query", slog.String("title", movie.Title))
	err := s.db.QueryRowxContext(ctx, query,
		movie.Title, movie.Genre, movie.Rating, movie.ImageURL, movie.CreatedAt,
	).Scan(&movie.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create movie in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

// GetByID finds a movie by its ID.
func (s *PostgresMovieStore) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	query := `SELECT id, title, genre, rating, image_url, created_at FROM movies WHERE id = $1`
	var movie domain.Movie

	s.logger.DebugContext(ctx, "Executing GetMovieByID query", slog.Int64("movieID", id))
	err := s.db.GetContext(ctx, &movie, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Movie not found by ID in DB", slog.Int64("movieID", id))
			return nil, ErrMovieNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}
	movie.CreatedAt = movie.CreatedAt.UTC()
	return &movie, nil
}

// Update rewrites the full row identified by movie.ID.
func (s *PostgresMovieStore) Update(ctx context.Context, movie *domain.Movie) error {
	query := `UPDATE movies SET title = $1, genre = $2, rating = $3, image_url = $4 WHERE id = $5`

	s.logger.DebugContext(ctx, "Executing Update movie query", slog.Int64("movieID", movie.ID))
	result, err := s.db.ExecContext(ctx, query, movie.Title, movie.Genre, movie.Rating, movie.ImageURL, movie.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update movie in DB", slog.Int64("movieID", movie.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update movie: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes the row identified by id.
func (s *PostgresMovieStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM movies WHERE id = $1`

	s.logger.DebugContext(ctx, "Executing Delete movie query", slog.Int64("movieID", id))
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete movie from DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No movie found to delete in DB", slog.Int64("movieID", id))
		return ErrMovieNotFound
	}
	return nil
}

// List returns one page of movies matching params plus the total match count.
func (s *PostgresMovieStore) List(ctx context.Context, params MovieListParams) ([]*domain.Movie, int, error) {
	countQuery := `SELECT COUNT(*) FROM movies WHERE 1=1`
	selectQuery := `SELECT id, title, genre, rating, image_url, created_at FROM movies WHERE 1=1`

	var args []interface{}
	var conditions []string
	argId := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE LOWER($%d)", argId))
		args = append(args, "%"+params.Search+"%")
		argId++
	}
	if params.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argId))
		args = append(args, params.Genre)
		argId++
	}

	if len(conditions) > 0 {
		conditionStr := " AND " + strings.Join(conditions, " AND ")
		countQuery += conditionStr
		selectQuery += conditionStr
	}

	var totalCount int
	s.logger.DebugContext(ctx, "Executing List movies count query", slog.String("query", countQuery), slog.Any("args", args))
	if err := s.db.GetContext(ctx, &totalCount, countQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count movies in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Movie{}, 0, nil
	}

	// The sort column comes from a fixed whitelist, never from user input
	// directly, so string concatenation is safe here.
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if params.Direction == "asc" {
		direction = "ASC"
	}
	selectQuery += fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)

	selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argId, argId+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	movies := []*domain.Movie{}
	s.logger.DebugContext(ctx, "Executing List movies select query", slog.String("query", selectQuery), slog.Any("args", args))
	if err := s.db.SelectContext(ctx, &movies, selectQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	for _, movie := range movies {
		movie.CreatedAt = movie.CreatedAt.UTC()
	}

	return movies, totalCount, nil
}

// Stats computes the catalog-wide aggregates.
func (s *PostgresMovieStore) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{ByGenre: make(map[string]int)}

	if err := s.db.GetContext(ctx, &stats.Total, `SELECT COUNT(*) FROM movies`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count movies for stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	var avg sql.NullFloat64
	if err := s.db.GetContext(ctx, &avg, `SELECT AVG(rating) FROM movies`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to average ratings for stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}
	if avg.Valid {
		stats.AvgRating = math.Round(avg.Float64*100) / 100
	}

	// The genre with the highest count wins; on equal counts whichever row the
	// grouping yields first is kept.
	type genreCount struct {
		Genre string `db:"genre"`
		Count int    `db:"count"`
	}
	var rows []genreCount
	query := `SELECT genre, COUNT(*) AS count FROM movies GROUP BY genre ORDER BY count DESC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to group movies by genre for stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to group movies by genre: %w", err)
	}
	for i, row := range rows {
		stats.ByGenre[row.Genre] = row.Count
		if i == 0 {
			topGenre := row.Genre
			stats.TopGenre = &topGenre
		}
	}

	return stats, nil
}
