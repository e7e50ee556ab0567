package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"CandleAlert/internal/pipeline"
	"CandleAlert/internal/recorder"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type statusResponse struct {
	Runs int               `json:"runs"`
	Last *pipeline.Summary `json:"last,omitempty"`
}

type runView struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Symbol     string          `json:"symbol"`
	Interval   string          `json:"interval"`
	Outcome    string          `json:"outcome"`
	Signal     bool            `json:"signal"`
	Price      float64         `json:"price,omitempty"`
	Conditions map[string]bool `json:"conditions,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func toRunView(rec recorder.RunRecord) runView {
	v := runView{
		RunID:      rec.RunID,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Symbol:     rec.Symbol,
		Interval:   rec.Interval,
		Outcome:    rec.Outcome,
		Signal:     rec.Signal,
		Price:      rec.Price,
		Error:      rec.Error,
	}
	if len(rec.Conditions) > 0 {
		v.Conditions = make(map[string]bool, len(rec.Conditions))
		for name, met := range rec.Conditions {
			v.Conditions[string(name)] = met
		}
	}
	return v
}

// Handler exposes liveness, the last result and recorded history.
func (s *Scheduler) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	return router
}

func (s *Scheduler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Scheduler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	last, runs := s.Last()
	resp := statusResponse{Runs: runs}
	if last != nil {
		sum := last.Summary()
		resp.Last = &sum
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Scheduler) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}
	recs, err := s.Recorder.RecentRuns(r.Context(), limit)
	if err != nil {
		s.Logger.Error("list runs", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
		return
	}
	views := make([]runView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, toRunView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve listens on addr until ctx is cancelled.
func (s *Scheduler) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("status server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
