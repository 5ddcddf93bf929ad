package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the route table and wraps it in the shared middleware.
// The middleware sits outside the mux so CORS preflight requests are answered
// even when no route matches.
func NewRouter(handler *MovieHandler) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/stats", handler.GetStats).Methods(http.MethodGet)

	moviesRouter := apiRouter.PathPrefix("/movies").Subrouter()
	moviesRouter.HandleFunc("", handler.ListMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("", handler.CreateMovie).Methods(http.MethodPost)
	moviesRouter.HandleFunc("/{movieId:[0-9]+}", handler.GetMovieByID).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/{movieId:[0-9]+}", handler.UpdateMovie).Methods(http.MethodPut)
	moviesRouter.HandleFunc("/{movieId:[0-9]+}", handler.DeleteMovie).Methods(http.MethodDelete)

	return RequestLogger(handler.logger)(CORS(router))
}
