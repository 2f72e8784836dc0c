package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matst80/logrelay/internal/obs"
	"github.com/matst80/logrelay/internal/relay"
	"github.com/matst80/logrelay/internal/web"
)

// statusSource is satisfied by *relay.Relay.
type statusSource interface {
	Status() relay.Stats
}

// newMetricsMux serves Prometheus metrics plus lightweight dashboard & state endpoints.
func newMetricsMux(src statusSource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/logrelay/metrics", promhttp.Handler())
	mux.HandleFunc("/logrelay/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(src.Status())
	})
	mux.HandleFunc("/logrelay/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := web.Render(w, "dashboard", src.Status().ToTemplateMap()); err != nil {
			obs.Error("dashboard.render", obs.Fields{"err": err.Error()})
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	// Ready means a connection to the log source is currently open.
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		st := src.Status()
		if st.Closing || !st.Connected {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	return mux
}

// startMetricsServer runs until ctx is done.
func startMetricsServer(ctx context.Context, addr string, src statusSource) {
	srv := &http.Server{Addr: addr, Handler: newMetricsMux(src), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	obs.Info("metrics.listen", obs.Fields{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		obs.Error("metrics.server", obs.Fields{"err": err.Error(), "addr": addr})
	}
}
