package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"togglkit/internal/usecase"
)

// runner is the part of App the trigger server needs.
type runner interface {
	RunOnce(ctx context.Context, from, to time.Time) error
}

// HTTPServer returns a configured http.Server that exposes endpoints to trigger syncs.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           loggingMiddleware(a.log, newMux(a, time.Now)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("http trigger server configured", zap.String("addr", addr))
	return srv
}

func newMux(r runner, now func() time.Time) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// /sync?from=...&to=...
	// from/to accept RFC3339 or YYYY-MM-DD. If omitted, defaults to [now-24h, now].
	// Anything else is rejected with 400.
	mux.HandleFunc("/sync", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := req.URL.Query()
		for _, key := range []string{"from", "to"} {
			if !ValidBoundary(q.Get(key)) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": "error",
					"error":  "invalid " + key + ", expected RFC3339 or YYYY-MM-DD",
				})
				return
			}
		}
		toTime := ParseEnd(q.Get("to"), now().UTC())
		fromTime := ParseStart(q.Get("from"), toTime.Add(-24*time.Hour))

		// Optional timeout override: ?timeout=5m
		ctx := req.Context()
		if tStr := q.Get("timeout"); tStr != "" {
			if d, err := time.ParseDuration(tStr); err == nil && d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
		}

		err := r.RunOnce(ctx, fromTime, toTime)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, usecase.ErrSyncRunning) {
				status = http.StatusConflict
			}
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "error",
				"error":  err.Error(),
				"from":   fromTime.Format(time.RFC3339),
				"to":     toTime.Format(time.RFC3339),
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"from":   fromTime.Format(time.RFC3339),
			"to":     toTime.Format(time.RFC3339),
		})
	})
	return mux
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("dur", time.Since(start)),
		)
	})
}
