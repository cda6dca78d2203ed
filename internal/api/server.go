package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/service"
	"github.com/pbaille/unikit/internal/share"
)

// Server exposes the service over HTTP
type Server struct {
	svc     *service.Service
	share   share.Provider
	log     *zap.Logger
	addr    string
	metrics *metrics
	now     func() time.Time
}

// New creates a new API server. sp may be nil, which disables report sharing.
func New(svc *service.Service, sp share.Provider, addr string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		svc:     svc,
		share:   sp,
		log:     log,
		addr:    addr,
		metrics: newMetrics(),
		now:     time.Now,
	}
}

// Handler returns the routed handler with CORS and metrics applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Ledger and structure
	mux.HandleFunc("GET /ledger", s.getLedger)
	mux.HandleFunc("POST /years", s.addYear)
	mux.HandleFunc("DELETE /years/{year}", s.removeYear)
	mux.HandleFunc("PUT /years/{year}/semesters", s.setSemesters)
	mux.HandleFunc("POST /years/reset", s.resetStructure)

	// Subjects
	mux.HandleFunc("POST /subjects", s.addSubject)
	mux.HandleFunc("PATCH /subjects/{id}", s.updateSubject)
	mux.HandleFunc("DELETE /subjects/{id}", s.removeSubject)

	// Results
	mux.HandleFunc("GET /cgpa", s.getCGPA)
	mux.HandleFunc("POST /cgpa", s.calculate)
	mux.HandleFunc("GET /history", s.listHistory)

	// Grade scale
	mux.HandleFunc("GET /scale", s.getScale)
	mux.HandleFunc("PUT /scale/default", s.setDefaultGrade)
	mux.HandleFunc("PUT /scale/points/{grade}", s.setPoint)
	mux.HandleFunc("POST /scale/reset", s.resetPoints)

	// Comparison roster
	mux.HandleFunc("GET /roster", s.getRoster)
	mux.HandleFunc("POST /roster", s.addFriend)
	mux.HandleFunc("DELETE /roster/{id}", s.removeFriend)
	mux.HandleFunc("PUT /roster/me", s.setMine)

	// Reports
	mux.HandleFunc("GET /report", s.getReport)
	mux.HandleFunc("POST /report/share", s.shareReport)

	// Health check and metrics
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", s.metrics.handler())

	return withCORS(s.metrics.middleware(mux))
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into v and validates it
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid request",
				"fields": fieldErrors(verrs),
			})
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// fail maps service errors onto status codes
func (s *Server) fail(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  ve.Error(),
			"fields": map[string]string{ve.Field: ve.Msg},
		})
	default:
		s.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}

func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// requireConfirm answers 409 with the number of subjects at stake
func requireConfirm(w http.ResponseWriter, action string, subjects int) {
	writeJSON(w, http.StatusConflict, map[string]any{
		"error":    action + " is destructive; repeat with confirm=true",
		"subjects": subjects,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
