package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"movie-catalog-service/internal/domain"
	"movie-catalog-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// MovieHandler holds the dependencies of the HTTP handlers.
type MovieHandler struct {
	store     store.MovieStore
	logger    *slog.Logger
	validator *validator.Validate
}

// NewMovieHandler creates a new MovieHandler instance.
func NewMovieHandler(s store.MovieStore, l *slog.Logger, v *validator.Validate) *MovieHandler {
	return &MovieHandler{
		store:     s,
		logger:    l,
		validator: v,
	}
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// --- Helpers ---

func (h *MovieHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *MovieHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, errorResponse{Error: message})
}

func (h *MovieHandler) respondValidationError(w http.ResponseWriter, r *http.Request, details map[string]string) {
	h.respondJSON(w, r, http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: details})
}

// parseIntParam reads an integer query parameter, falling back to def when it
// is absent and clamping the value into [min, max] (max 0 means unbounded).
// A value that is present but not an integer is an error.
func parseIntParam(values url.Values, name string, def, min, max int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if val < min {
		val = min
	}
	if max > 0 && val > max {
		val = max
	}
	return val, nil
}

// movieID extracts the numeric id from the route. The route pattern already
// constrains the segment to digits.
func movieID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["movieId"], 10, 64)
	return id
}

// --- Handlers ---

// ListMovies returns one page of movies with filtering and sorting applied.
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queryParams := r.URL.Query()

	page, err := parseIntParam(queryParams, "page", 1, 1, 0)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := parseIntParam(queryParams, "pageSize", defaultPageSize, 1, maxPageSize)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	params := store.MovieListParams{
		Page:      page,
		PageSize:  pageSize,
		Search:    strings.TrimSpace(queryParams.Get("q")),
		Genre:     strings.TrimSpace(queryParams.Get("genre")),
		SortBy:    strings.TrimSpace(queryParams.Get("sort")),
		Direction: strings.ToLower(strings.TrimSpace(queryParams.Get("dir"))),
	}

	movies, totalCount, err := h.store.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list movies from store", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve movies")
		return
	}
	if movies == nil {
		movies = []*domain.Movie{}
	}

	response := struct {
		Items      []*domain.Movie `json:"items"`
		Total      int             `json:"total"`
		Page       int             `json:"page"`
		PageSize   int             `json:"pageSize"`
		TotalPages int             `json:"totalPages"`
	}{
		Items:      movies,
		Total:      totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (totalCount + pageSize - 1) / pageSize,
	}
	h.respondJSON(w, r, http.StatusOK, response)
}

// GetMovieByID returns a single movie.
func (h *MovieHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := movieID(r)

	movie, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Movie not found")
		} else {
			h.logger.ErrorContext(ctx, "Error finding movie by ID", slog.Int64("movieID", id), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Error finding movie")
		}
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// CreateMovie validates the full payload and persists a new movie.
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.MoviePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode movie creation request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if details := domain.ValidatePayload(h.validator, &req, false); len(details) > 0 {
		h.respondValidationError(w, r, details)
		return
	}

	movie := &domain.Movie{}
	req.ApplyTo(movie)

	if err := h.store.Create(ctx, movie); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create movie in store", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to create movie")
		return
	}
	h.respondJSON(w, r, http.StatusCreated, movie)
}

// UpdateMovie applies a partial update to an existing movie. Only the fields
// present in the payload change; everything else keeps its prior value.
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := movieID(r)

	movie, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Movie not found")
		} else {
			h.logger.ErrorContext(ctx, "Error finding movie for update", slog.Int64("movieID", id), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Error finding movie")
		}
		return
	}

	var req domain.MoviePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode movie update request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if details := domain.ValidatePayload(h.validator, &req, true); len(details) > 0 {
		h.respondValidationError(w, r, details)
		return
	}

	req.ApplyTo(movie)
	if err := h.store.Update(ctx, movie); err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Movie not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to update movie in store", slog.Int64("movieID", id), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Failed to update movie")
		}
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// DeleteMovie removes a movie.
func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := movieID(r)

	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Movie not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to delete movie from store", slog.Int64("movieID", id), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Failed to delete movie")
		}
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetStats returns catalog-wide aggregates. Unlike the list endpoint, a bad
// pageSize here falls back to the default instead of failing the request.
func (h *MovieHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pageSize, err := parseIntParam(r.URL.Query(), "pageSize", defaultPageSize, 1, maxPageSize)
	if err != nil {
		pageSize = defaultPageSize
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to compute stats", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	response := struct {
		domain.Stats
		CurrentPageSize int `json:"currentPageSize"`
	}{
		Stats:           *stats,
		CurrentPageSize: pageSize,
	}
	h.respondJSON(w, r, http.StatusOK, response)
}

// HealthCheck reports liveness.
func (h *MovieHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}
