package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zbridge-io/zbridge/internal/schema"
	"github.com/zbridge-io/zbridge/internal/zabbix"
)

// newTestDispatcher wires a Dispatcher to a stub backend that answers
// user.login with a token and every other method with a canned result.
// calls counts backend round trips.
func newTestDispatcher(t *testing.T, results map[string]any) (*Dispatcher, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Method string `json:"method"`
			ID     int64  `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if req.Method == "user.login" {
			resp["result"] = "tok-test"
		} else if res, ok := results[req.Method]; ok {
			resp["result"] = res
		} else {
			resp["result"] = []any{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	client := zabbix.NewClient(srv.URL, zabbix.Credentials{User: "api", Password: "secret"}, 2*time.Second)
	return New(schema.Default(), client), &calls
}

func TestDispatchEndToEnd(t *testing.T) {
	d, _ := newTestDispatcher(t, map[string]any{
		"host.get": []any{map[string]any{"hostid": "1"}},
	})
	resp := d.Dispatch(context.Background(), Request{JSONRPC: "2.0", Method: "getHosts", Params: map[string]any{}, ID: "abc"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.ID != "abc" {
		t.Fatalf("id = %v; want abc", resp.ID)
	}
	var hosts []map[string]any
	if err := json.Unmarshal(resp.Result, &hosts); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(hosts) != 1 || hosts[0]["hostid"] != "1" {
		t.Fatalf("unexpected result %v", hosts)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	d, calls := newTestDispatcher(t, nil)
	resp := d.Dispatch(context.Background(), Request{JSONRPC: "2.0", Method: "deleteEverything", ID: 7})
	if resp.Error == nil {
		t.Fatalf("expected error envelope")
	}
	if resp.Error.Code != CodeInternalError {
		t.Fatalf("code = %d; want %d", resp.Error.Code, CodeInternalError)
	}
	if !strings.Contains(resp.Error.Message, "not supported") {
		t.Fatalf("message %q does not mention unsupported method", resp.Error.Message)
	}
	if resp.ID != 7 {
		t.Fatalf("id = %v; want 7", resp.ID)
	}
	if calls.Load() != 0 {
		t.Fatalf("backend was called %d times for an unsupported method", calls.Load())
	}
}

func TestDispatchMissingRequiredParam(t *testing.T) {
	d, calls := newTestDispatcher(t, nil)
	resp := d.Dispatch(context.Background(), Request{JSONRPC: "2.0", Method: "getHistory", Params: map[string]any{}, ID: "h1"})
	if resp.Error == nil {
		t.Fatalf("expected error envelope")
	}
	if !strings.Contains(resp.Error.Message, "itemids") {
		t.Fatalf("message %q does not name the missing parameter", resp.Error.Message)
	}
	if calls.Load() != 0 {
		t.Fatalf("validation failure reached the backend (%d calls)", calls.Load())
	}
}

func TestDispatchExactlyOneOfResultError(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)
	for _, req := range []Request{
		{JSONRPC: "2.0", Method: "getHosts", Params: map[string]any{}, ID: 1},
		{JSONRPC: "2.0", Method: "nope", ID: 2},
		{JSONRPC: "2.0", Method: "getHistory", Params: map[string]any{}, ID: 3},
	} {
		resp := d.Dispatch(context.Background(), req)
		hasResult := len(resp.Result) > 0
		hasError := resp.Error != nil
		if hasResult == hasError {
			t.Fatalf("request %v: result=%v error=%v; want exactly one", req.ID, hasResult, hasError)
		}
		b, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var wire map[string]any
		_ = json.Unmarshal(b, &wire)
		_, r := wire["result"]
		_, e := wire["error"]
		if r == e {
			t.Fatalf("wire envelope %s must carry exactly one of result/error", b)
		}
	}
}

func TestDispatchRawInvalidEnvelope(t *testing.T) {
	d, calls := newTestDispatcher(t, nil)
	for _, body := range []string{
		`not json`,
		`{"jsonrpc":"1.0","method":"getHosts","id":1}`,
		`{"jsonrpc":"2.0","id":1}`,
	} {
		resp := d.DispatchRaw(context.Background(), []byte(body))
		if resp.Error == nil || resp.Error.Code != CodeInvalidRequest {
			t.Fatalf("body %q: expected invalid-request error, got %+v", body, resp.Error)
		}
		if resp.ID != nil {
			t.Fatalf("body %q: id = %v; uncorrelatable requests must carry a null id", body, resp.ID)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("invalid envelopes reached the backend")
	}
}

func TestDispatchExecuteAction(t *testing.T) {
	d, _ := newTestDispatcher(t, map[string]any{
		"hostgroup.get": []any{map[string]any{"groupid": "4"}},
	})
	resp := d.Dispatch(context.Background(), Request{
		JSONRPC: "2.0",
		Method:  "executeAction",
		Params:  map[string]any{"method": "hostgroup.get", "params": map[string]any{"output": "extend"}},
		ID:      "x",
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if !strings.Contains(string(resp.Result), `"groupid":"4"`) {
		t.Fatalf("unexpected result %s", resp.Result)
	}
}

func TestDispatchExecuteActionRequiresMethod(t *testing.T) {
	d, calls := newTestDispatcher(t, nil)
	resp := d.Dispatch(context.Background(), Request{
		JSONRPC: "2.0",
		Method:  "executeAction",
		Params:  map[string]any{"params": map[string]any{}},
		ID:      1,
	})
	if resp.Error == nil {
		t.Fatalf("expected error for executeAction without method")
	}
	if calls.Load() != 0 {
		t.Fatalf("backend was reached without a target method")
	}
}

func TestEveryRegistryActionIsDispatchable(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)
	for _, a := range d.Registry().List() {
		params := map[string]any{}
		switch a.Name {
		case "getHistory":
			params["itemids"] = []any{"10042"}
		case "executeAction":
			params["method"] = "apiinfo.version"
		}
		resp := d.Dispatch(context.Background(), Request{JSONRPC: "2.0", Method: a.Name, Params: params, ID: a.Name})
		if resp.Error != nil && strings.Contains(resp.Error.Message, "not supported") {
			t.Fatalf("registry action %s is not wired into the dispatcher", a.Name)
		}
	}
}

func TestDispatchBackendErrorDetailPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int64  `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if req.Method == "user.login" {
			resp["result"] = "tok"
		} else {
			resp["error"] = map[string]any{"code": -32500, "message": "Application error.", "data": "boom"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()
	client := zabbix.NewClient(srv.URL, zabbix.Credentials{User: "api", Password: "secret"}, time.Second)
	d := New(schema.Default(), client)

	resp := d.Dispatch(context.Background(), Request{JSONRPC: "2.0", Method: "getEvents", Params: map[string]any{}, ID: 5})
	if resp.Error == nil || resp.Error.Code != CodeInternalError {
		t.Fatalf("expected internal error envelope, got %+v", resp.Error)
	}
	detail, _ := resp.Error.Data.(string)
	if !strings.Contains(detail, "boom") {
		t.Fatalf("error data %q lost the upstream detail", detail)
	}
}
