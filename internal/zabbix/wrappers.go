package zabbix

import (
	"context"
	"encoding/json"
)

// Params is a free-form parameter object for a backend method.
type Params map[string]any

// merge overlays p onto defaults; caller-supplied values win on collision.
func merge(defaults, p Params) Params {
	out := make(Params, len(defaults)+len(p))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	return out
}

// GetHosts retrieves configured hosts (host.get).
func (c *Client) GetHosts(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "host.get", merge(Params{"output": "extend"}, p), true)
}

// GetProblems retrieves current problems (problem.get).
func (c *Client) GetProblems(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "problem.get", merge(Params{"output": "extend", "recent": true, "limit": 50}, p), true)
}

// GetItems retrieves monitored items (item.get).
func (c *Client) GetItems(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "item.get", merge(Params{"output": "extend", "limit": 100}, p), true)
}

// GetTriggers retrieves trigger definitions (trigger.get).
func (c *Client) GetTriggers(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "trigger.get", merge(Params{"output": "extend", "limit": 100}, p), true)
}

// GetEvents retrieves events (event.get), newest first.
func (c *Client) GetEvents(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "event.get", merge(Params{"output": "extend", "sortfield": "eventid", "sortorder": "DESC", "limit": 50}, p), true)
}

// GetAlerts retrieves sent alerts (alert.get), newest first.
func (c *Client) GetAlerts(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "alert.get", merge(Params{"output": "extend", "sortfield": "clock", "sortorder": "DESC", "limit": 50}, p), true)
}

// GetDashboards retrieves dashboards (dashboard.get).
func (c *Client) GetDashboards(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "dashboard.get", merge(Params{"output": "extend"}, p), true)
}

// GetHistory retrieves item history (history.get), newest first. The backend
// requires itemids; the schema registry enforces that before we get here.
func (c *Client) GetHistory(ctx context.Context, p Params) (json.RawMessage, error) {
	return c.Call(ctx, "history.get", merge(Params{"output": "extend", "sortfield": "clock", "sortorder": "DESC", "limit": 100}, p), true)
}

// ExecuteAction forwards an arbitrary backend method with the given
// parameters. This is the escape hatch for methods that have no dedicated
// wrapper; the dispatcher uses it for registry actions it does not map
// explicitly.
func (c *Client) ExecuteAction(ctx context.Context, method string, p Params) (json.RawMessage, error) {
	return c.Call(ctx, method, p, true)
}
