// Package server assembles the bridge's HTTP surface.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zbridge-io/zbridge/core/logx"
	"github.com/zbridge-io/zbridge/internal/api"
	"github.com/zbridge-io/zbridge/internal/bridge"
	"github.com/zbridge-io/zbridge/internal/config"
	"github.com/zbridge-io/zbridge/internal/dispatch"
	"github.com/zbridge-io/zbridge/internal/mcpserver"
	"github.com/zbridge-io/zbridge/internal/metrics"
	"github.com/zbridge-io/zbridge/internal/status"
)

// Deps are the live components the router serves.
type Deps struct {
	Dispatcher *dispatch.Dispatcher
	Broker     *bridge.Broker
	Reporter   *status.Reporter
	Spec       *openapi3.T
	Version    string
}

// New constructs the HTTP handler for the bridge.
func New(cfg config.ServerConfig, deps Deps) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range api.MiddlewareChain() {
		r.Use(m)
	}

	preg := prometheus.NewRegistry()
	metrics.Register(preg)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(ar chi.Router) {
		if cfg.APIKey != "" {
			ar.Use(api.KeyAuthMiddleware(cfg.APIKey))
		}
		ar.Post("/rpc", bridge.RPCHandler(deps.Dispatcher, deps.Broker))
		ar.Get("/events", deps.Broker.SSEHandler())
		ar.Get("/ws", deps.Broker.WSHandler())
		ar.Get("/actions", bridge.ActionsHandler(deps.Dispatcher))
		ar.Get("/state", stateHandler(deps.Reporter))
		if deps.Spec != nil {
			ar.Get("/openapi.json", api.OpenAPIHandler(deps.Spec))
		}
	})

	// MCP agents speak streamable HTTP against /mcp; same dispatcher,
	// same action surface.
	mcpHandler := mcpserver.NewHandler(deps.Dispatcher, deps.Version)
	r.Handle("/mcp", mcpHandler)
	r.Handle("/mcp/*", mcpHandler)

	if cfg.MetricsAddr == fmt.Sprintf(":%d", cfg.Port) {
		r.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	}

	return r
}

func stateHandler(rep *status.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rep.Snapshot()); err != nil {
			logx.Log.Error().Err(err).Msg("encode state")
		}
	}
}
