package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-catalog-service/internal/domain"
	"movie-catalog-service/internal/store"

	"github.com/go-playground/validator/v10"
)

type testEnv struct {
	store  *store.MemoryMovieStore
	router http.Handler
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.NewMemoryMovieStore()
	handler := NewMovieHandler(s, logger, validator.New())
	return &testEnv{store: s, router: NewRouter(handler)}
}

func (e *testEnv) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

type listResponse struct {
	Items      []domain.Movie `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func createFixture(t *testing.T, e *testEnv, title, genre string, rating int) domain.Movie {
	t.Helper()
	payload := fmt.Sprintf(`{"title":%q,"genre":%q,"rating":%d,"imageUrl":"https://example.com/img.png"}`, title, genre, rating)
	rec := e.do(t, http.MethodPost, "/api/movies", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create fixture: status %d body %s", rec.Code, rec.Body.String())
	}
	var movie domain.Movie
	decodeBody(t, rec, &movie)
	return movie
}

func TestHealthCheck(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]bool
	decodeBody(t, rec, &body)
	if !body["ok"] {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCreateMovie(t *testing.T) {
	e := newTestEnv()
	movie := createFixture(t, e, "Inception", "Sci-Fi", 9)

	if movie.ID == 0 {
		t.Errorf("id not assigned")
	}
	if movie.Rating < 1 || movie.Rating > 10 {
		t.Errorf("rating out of range: %d", movie.Rating)
	}
	if movie.CreatedAt.IsZero() {
		t.Errorf("createdAt not set")
	}
}

func TestCreateMovieTrimsFields(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodPost, "/api/movies", `{"title":"  Alien  ","genre":" Horror ","rating":8,"imageUrl":" https://example.com/alien.png "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var movie domain.Movie
	decodeBody(t, rec, &movie)
	if movie.Title != "Alien" || movie.Genre != "Horror" {
		t.Errorf("fields not trimmed: %+v", movie)
	}
}

func TestCreateMovieInvalidRating(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodPost, "/api/movies", `{"title":"Bad","genre":"Drama","rating":15,"imageUrl":"https://example.com/bad.png"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if body.Error != "Validation failed" {
		t.Errorf("error = %q", body.Error)
	}
	if body.Details["rating"] == "" {
		t.Errorf("details.rating missing: %v", body.Details)
	}

	// Nothing was persisted.
	var list listResponse
	listRec := e.do(t, http.MethodGet, "/api/movies", "")
	decodeBody(t, listRec, &list)
	if list.Total != 0 {
		t.Errorf("invalid create persisted a record: total %d", list.Total)
	}
}

func TestCreateMovieMissingFields(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodPost, "/api/movies", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	for _, field := range []string{"title", "genre", "rating", "imageUrl"} {
		if body.Details[field] != "Required" {
			t.Errorf("details[%q] = %q, want Required", field, body.Details[field])
		}
	}
}

func TestCreateMovieMalformedBody(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodPost, "/api/movies", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetMovie(t *testing.T) {
	e := newTestEnv()
	created := createFixture(t, e, "Inception", "Sci-Fi", 9)

	rec := e.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var movie domain.Movie
	decodeBody(t, rec, &movie)
	if movie.ID != created.ID || movie.Title != "Inception" {
		t.Errorf("unexpected movie: %+v", movie)
	}
	// createdAt serializes as UTC with a trailing Z.
	if !strings.Contains(rec.Body.String(), `Z"`) {
		t.Errorf("createdAt not UTC-serialized: %s", rec.Body.String())
	}
}

func TestGetMovieNotFound(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodGet, "/api/movies/999999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if body.Error == "" {
		t.Errorf("missing error message: %s", rec.Body.String())
	}
}

func TestUpdateMoviePartial(t *testing.T) {
	e := newTestEnv()
	created := createFixture(t, e, "Inception", "Sci-Fi", 9)

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/movies/%d", created.ID), `{"rating":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var movie domain.Movie
	decodeBody(t, rec, &movie)
	if movie.Rating != 4 {
		t.Errorf("rating = %d, want 4", movie.Rating)
	}
	if movie.Title != created.Title || movie.Genre != created.Genre || movie.ImageURL != created.ImageURL {
		t.Errorf("partial update touched other fields: %+v", movie)
	}
	if !movie.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt changed on update")
	}
}

func TestUpdateMovieValidation(t *testing.T) {
	e := newTestEnv()
	created := createFixture(t, e, "Inception", "Sci-Fi", 9)

	rec := e.do(t, http.MethodPut, fmt.Sprintf("/api/movies/%d", created.ID), `{"title":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if body.Details["title"] != "Title cannot be empty" {
		t.Errorf("details = %v", body.Details)
	}
}

func TestUpdateMovieNotFound(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodPut, "/api/movies/999999", `{"rating":4}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeleteMovie(t *testing.T) {
	e := newTestEnv()
	created := createFixture(t, e, "Inception", "Sci-Fi", 9)

	rec := e.do(t, http.MethodDelete, fmt.Sprintf("/api/movies/%d", created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "deleted" {
		t.Errorf("body = %s", rec.Body.String())
	}

	getRec := e.do(t, http.MethodGet, fmt.Sprintf("/api/movies/%d", created.ID), "")
	if getRec.Code != http.StatusNotFound {
		t.Errorf("fetch after delete: status = %d", getRec.Code)
	}
}

func TestDeleteMovieNotFound(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodDelete, "/api/movies/999999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListPagination(t *testing.T) {
	e := newTestEnv()
	for i := 1; i <= 25; i++ {
		createFixture(t, e, fmt.Sprintf("Movie %02d", i), "Drama", (i-1)%10+1)
	}

	rec := e.do(t, http.MethodGet, "/api/movies?page=2&pageSize=10&sort=title&dir=asc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list listResponse
	decodeBody(t, rec, &list)
	if list.Total != 25 || list.Page != 2 || list.PageSize != 10 || list.TotalPages != 3 {
		t.Fatalf("paging metadata wrong: %+v", list)
	}
	if len(list.Items) != 10 || list.Items[0].Title != "Movie 11" || list.Items[9].Title != "Movie 20" {
		t.Errorf("page contents wrong: %d items, first %q", len(list.Items), list.Items[0].Title)
	}
}

func TestListClampsPageSize(t *testing.T) {
	e := newTestEnv()
	createFixture(t, e, "Solo", "Drama", 5)

	rec := e.do(t, http.MethodGet, "/api/movies?pageSize=500", "")
	var list listResponse
	decodeBody(t, rec, &list)
	if list.PageSize != 50 {
		t.Errorf("pageSize = %d, want clamp to 50", list.PageSize)
	}

	rec = e.do(t, http.MethodGet, "/api/movies?page=-3&pageSize=0", "")
	decodeBody(t, rec, &list)
	if list.Page != 1 || list.PageSize != 1 {
		t.Errorf("lower clamps wrong: page %d pageSize %d", list.Page, list.PageSize)
	}
}

func TestListRejectsMalformedIntegers(t *testing.T) {
	e := newTestEnv()
	for _, path := range []string{"/api/movies?page=abc", "/api/movies?pageSize=abc"} {
		rec := e.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
		var body errorBody
		decodeBody(t, rec, &body)
		if !strings.Contains(body.Error, "must be an integer") {
			t.Errorf("%s: error = %q", path, body.Error)
		}
	}
}

func TestListSearchFilter(t *testing.T) {
	e := newTestEnv()
	for _, title := range []string{"Batman Begins", "Superman", "Alien"} {
		createFixture(t, e, title, "Action", 7)
	}

	rec := e.do(t, http.MethodGet, "/api/movies?q=man", "")
	var list listResponse
	decodeBody(t, rec, &list)
	if list.Total != 2 {
		t.Fatalf("total = %d, want 2", list.Total)
	}
	for _, m := range list.Items {
		if !strings.Contains(strings.ToLower(m.Title), "man") {
			t.Errorf("non-matching title %q", m.Title)
		}
	}
}

func TestListEmptyCatalog(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodGet, "/api/movies", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list listResponse
	decodeBody(t, rec, &list)
	if list.Total != 0 || list.TotalPages != 0 || len(list.Items) != 0 {
		t.Errorf("empty catalog response wrong: %+v", list)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("items not serialized as empty array: %s", rec.Body.String())
	}
}

func TestStatsEndpoint(t *testing.T) {
	e := newTestEnv()
	createFixture(t, e, "A", "Action", 8)
	createFixture(t, e, "B", "Action", 6)
	createFixture(t, e, "C", "Drama", 9)

	rec := e.do(t, http.MethodGet, "/api/stats?pageSize=20", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Total           int            `json:"total"`
		AvgRating       float64        `json:"avgRating"`
		TopGenre        *string        `json:"topGenre"`
		ByGenre         map[string]int `json:"byGenre"`
		CurrentPageSize int            `json:"currentPageSize"`
	}
	decodeBody(t, rec, &body)
	if body.Total != 3 {
		t.Errorf("total = %d", body.Total)
	}
	if body.AvgRating != 7.67 {
		t.Errorf("avgRating = %v, want 7.67", body.AvgRating)
	}
	if body.TopGenre == nil || *body.TopGenre != "Action" {
		t.Errorf("topGenre = %v", body.TopGenre)
	}
	if body.ByGenre["Action"] != 2 || body.ByGenre["Drama"] != 1 {
		t.Errorf("byGenre = %v", body.ByGenre)
	}
	if body.CurrentPageSize != 20 {
		t.Errorf("currentPageSize = %d", body.CurrentPageSize)
	}
}

func TestStatsBadPageSizeFallsBack(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodGet, "/api/stats?pageSize=abc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, stats must not fail on a bad pageSize", rec.Code)
	}
	var body struct {
		CurrentPageSize int `json:"currentPageSize"`
	}
	decodeBody(t, rec, &body)
	if body.CurrentPageSize != 10 {
		t.Errorf("currentPageSize = %d, want default 10", body.CurrentPageSize)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodOptions, "/api/movies", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS headers")
	}
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestEnv()
	rec := e.do(t, http.MethodGet, "/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Errorf("X-Request-ID not set")
	}
}
