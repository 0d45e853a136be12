// Package dispatch is the single entry point translating abstract bridge
// requests into concrete backend calls. Both transports (the synchronous
// POST path and the streaming channels) and the MCP tool surface run through
// the same Dispatcher, so behavior is identical regardless of how a request
// arrives.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zbridge-io/zbridge/core/logx"
	"github.com/zbridge-io/zbridge/internal/metrics"
	"github.com/zbridge-io/zbridge/internal/schema"
	"github.com/zbridge-io/zbridge/internal/zabbix"
)

// Handler executes one resolved action with merged parameters.
type Handler func(ctx context.Context, params zabbix.Params) (json.RawMessage, error)

// Dispatcher resolves {method, params, id} requests against the schema
// registry and a shared session client. The handler table is built from the
// registry at construction time, so every declared action is dispatchable
// and nothing else is.
type Dispatcher struct {
	reg      *schema.Registry
	handlers map[string]Handler
}

// New builds a Dispatcher over the given registry and client. The client is
// injected rather than created here; its lifecycle (final logout) belongs to
// the caller.
func New(reg *schema.Registry, client *zabbix.Client) *Dispatcher {
	wrappers := map[string]Handler{
		"getHosts":      client.GetHosts,
		"getProblems":   client.GetProblems,
		"getItems":      client.GetItems,
		"getTriggers":   client.GetTriggers,
		"getEvents":     client.GetEvents,
		"getAlerts":     client.GetAlerts,
		"getDashboards": client.GetDashboards,
		"getHistory":    client.GetHistory,
	}
	handlers := make(map[string]Handler)
	for _, a := range reg.List() {
		if h, ok := wrappers[a.Name]; ok {
			handlers[a.Name] = h
			continue
		}
		if a.Name == "executeAction" {
			handlers[a.Name] = func(ctx context.Context, p zabbix.Params) (json.RawMessage, error) {
				method, _ := p["method"].(string)
				if method == "" {
					return nil, &schema.MissingParamError{Action: "executeAction", Param: "method"}
				}
				fwd, _ := p["params"].(map[string]any)
				return client.ExecuteAction(ctx, method, fwd)
			}
			continue
		}
		// Registry entries without a dedicated wrapper pass straight
		// through to their declared backend method.
		method := a.Method
		handlers[a.Name] = func(ctx context.Context, p zabbix.Params) (json.RawMessage, error) {
			return client.ExecuteAction(ctx, method, p)
		}
	}
	return &Dispatcher{reg: reg, handlers: handlers}
}

// Registry exposes the underlying schema registry for introspection surfaces.
func (d *Dispatcher) Registry() *schema.Registry { return d.reg }

// DispatchRaw parses body as an envelope and dispatches it. Malformed or
// non-2.0 envelopes yield an invalid-request error with a null id, since the
// request could not be correlated.
func (d *Dispatcher) DispatchRaw(ctx context.Context, body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return errorResponse(nil, CodeInvalidRequest, "Invalid request", err.Error())
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(nil, CodeInvalidRequest, "Invalid request", "expected jsonrpc 2.0 envelope with a method")
	}
	return d.Dispatch(ctx, req)
}

// Dispatch resolves and executes one request, always returning a well-formed
// response envelope with exactly one of result or error set. Validation
// failures (unknown method, missing required parameter) are resolved here
// and never reach the backend.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	handler, ok := d.handlers[req.Method]
	if !ok {
		metrics.RecordDispatch(req.Method, "unsupported")
		return errorResponse(req.ID, CodeInternalError, fmt.Sprintf("Method not supported: %s", req.Method), nil)
	}
	merged, err := d.reg.ApplyDefaults(req.Method, req.Params)
	if err != nil {
		metrics.RecordDispatch(req.Method, "invalid_params")
		return errorResponse(req.ID, CodeInternalError, err.Error(), nil)
	}
	result, err := handler(ctx, merged)
	if err != nil {
		logx.Log.Warn().Err(err).Str("method", req.Method).Msg("dispatch failed")
		metrics.RecordDispatch(req.Method, "error")
		return errorResponse(req.ID, CodeInternalError, fmt.Sprintf("%s failed", req.Method), err.Error())
	}
	metrics.RecordDispatch(req.Method, "ok")
	return resultResponse(req.ID, result)
}
