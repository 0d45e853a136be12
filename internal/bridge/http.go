package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/zbridge-io/zbridge/core/logx"
	"github.com/zbridge-io/zbridge/internal/dispatch"
)

// maxBodyBytes bounds direct-call request bodies.
const maxBodyBytes = 1 << 20

// RPCHandler serves the synchronous request path. It dispatches through the
// same Dispatcher as the streaming channels. When the caller names an open
// stream connection via the "stream" query parameter, the response envelope
// is pushed on that channel instead and the POST is acknowledged with 202.
func RPCHandler(d *dispatch.Dispatcher, b *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if streamID := r.URL.Query().Get("stream"); streamID != "" {
			c, ok := b.Get(streamID)
			if !ok {
				http.Error(w, "unknown stream connection", http.StatusNotFound)
				return
			}
			// The POST returns before the dispatch completes, so the
			// work must not die with the request context.
			ctx := context.WithoutCancel(r.Context())
			go func() {
				resp := d.DispatchRaw(ctx, body)
				c.Push(resp)
			}()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"status":"accepted"}`))
			return
		}
		resp := d.DispatchRaw(r.Context(), body)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logx.Log.Debug().Err(err).Msg("rpc response write failed")
		}
	}
}

// ActionsHandler serves the registry catalog for introspection.
func ActionsHandler(d *dispatch.Dispatcher) http.HandlerFunc {
	type paramDoc struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Required    bool   `json:"required,omitempty"`
		Default     any    `json:"default,omitempty"`
	}
	type actionDoc struct {
		Name        string              `json:"name"`
		Description string              `json:"description"`
		Params      map[string]paramDoc `json:"parameters"`
		Returns     struct {
			Type        string `json:"type"`
			Description string `json:"description"`
			Item        string `json:"item,omitempty"`
		} `json:"returns"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		actions := d.Registry().List()
		out := make([]actionDoc, 0, len(actions))
		for _, a := range actions {
			doc := actionDoc{Name: a.Name, Description: a.Description, Params: map[string]paramDoc{}}
			doc.Returns.Type = a.Returns.Type
			doc.Returns.Description = a.Returns.Description
			doc.Returns.Item = a.Returns.Item
			for name, p := range a.Params {
				doc.Params[name] = paramDoc{Type: p.Type, Description: p.Description, Required: p.Required, Default: p.Default}
			}
			out = append(out, doc)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			logx.Log.Debug().Err(err).Msg("actions response write failed")
		}
	}
}
