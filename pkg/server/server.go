// Package server exposes the scan operation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pedrokiefer/exposure/pkg/scan"
)

type Scanner interface {
	Scan(ctx context.Context, raw string) (*scan.Result, error)
}

// ResultStore keeps a copy of every successful scan.
type ResultStore interface {
	Save(ctx context.Context, r *scan.Result) (string, error)
}

type Router struct {
	scanner Scanner
	store   ResultStore
}

// NewRouter returns the API handler. store may be nil.
func NewRouter(s Scanner, store ResultStore, origins []string) http.Handler {
	rt := &Router{scanner: s, store: store}
	mux := chi.NewRouter()

	mux.Use(Logging)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", rt.wrap(rt.handleScan))
	})
	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func (rt *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br *badRequest
		var ie *scan.InputError
		switch {
		case errors.As(err, &br), errors.As(err, &ie):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("request_id=%s error=%q\n", RequestID(req.Context()), err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/v1/scan
// Body: {"domain": "example.com"}
func (rt *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 4096)).Decode(&body); err != nil {
		return &badRequest{msg: "request body must be a JSON object"}
	}
	raw, present := body["domain"]
	if !present || raw == nil {
		return &badRequest{msg: "domain is required"}
	}
	domain, ok := raw.(string)
	if !ok {
		return &badRequest{msg: "domain must be a string"}
	}

	res, err := rt.scanner.Scan(req.Context(), domain)
	if err != nil {
		return err
	}

	if rt.store != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), 10*time.Second)
		key, err := rt.store.Save(ctx, res)
		cancel()
		if err != nil {
			log.Printf("request_id=%s store error=%q\n", RequestID(req.Context()), err)
		} else {
			log.Printf("request_id=%s stored=%s\n", RequestID(req.Context()), key)
		}
	}

	writeJSON(w, http.StatusOK, res)
	return nil
}
