// Package server exposes the local record store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/service"
)

// Server serves the record API.
type Server struct {
	httpServer *http.Server
	store      service.Storage
	validate   *validator.Validate
}

// NewServer creates a record API server on the given port.
func NewServer(port int, store service.Storage) *Server {
	s := &Server{
		store:    store,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{userID}/records", s.handleListRecords)
		r.Put("/records", s.handleUpsertRecords)
		r.Get("/records/{id}", s.handleGetRecord)
		r.Delete("/records/{id}", s.handleDeleteRecord)
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start runs the server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Record API listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type upsertRequest struct {
	Records []recordPayload `json:"records" validate:"required,min=1,dive"`
}

// recordPayload is the wire form of a record mutation. UUID format is only
// enforced here, at the API boundary; the store accepts any non-empty id.
type recordPayload struct {
	ID            string `json:"id" validate:"required"`
	UserID        string `json:"user_id" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=bank store ewallet"`
	Code          string `json:"code" validate:"required"`
	Metadata      string `json:"metadata"`
	MetadataType  string `json:"metadata_type" validate:"required,oneof=qr barcode"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	records, err := s.store.GetRecordsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []model.QRRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetRecordByID(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpsertRecords(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	now := time.Now().UTC()
	records := make([]model.QRRecord, len(req.Records))
	for i, p := range req.Records {
		rec := model.QRRecord{
			ID:            p.ID,
			UserID:        p.UserID,
			Type:          model.RecordType(p.Type),
			Code:          p.Code,
			Metadata:      p.Metadata,
			MetadataType:  model.MetadataType(p.MetadataType),
			AccountName:   p.AccountName,
			AccountNumber: p.AccountNumber,
		}
		rec.Touch(now)
		records[i] = rec
	}

	if err := s.store.UpsertRecords(r.Context(), records); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"upserted": len(records)})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.DeleteRecord(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
