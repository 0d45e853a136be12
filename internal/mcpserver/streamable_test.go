package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	sdkserver "github.com/mark3labs/mcp-go/server"

	"github.com/zbridge-io/zbridge/internal/dispatch"
	"github.com/zbridge-io/zbridge/internal/schema"
	"github.com/zbridge-io/zbridge/internal/zabbix"
)

func testDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int64  `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if req.Method == "user.login" {
			resp["result"] = "tok"
		} else {
			resp["result"] = []any{map[string]any{"hostid": "1"}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(backend.Close)
	zc := zabbix.NewClient(backend.URL, zabbix.Credentials{User: "api", Password: "x"}, time.Second)
	return dispatch.New(schema.Default(), zc)
}

func startMCP(t *testing.T) (*client.Client, func()) {
	t.Helper()
	srv := sdkserver.NewTestStreamableHTTPServer(NewServer(testDispatcher(t), "test"))
	cl, err := client.NewStreamableHttpClient(srv.URL + "/mcp")
	if err != nil {
		srv.Close()
		t.Fatalf("client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cl.Start(ctx); err != nil {
		cancel()
		srv.Close()
		t.Fatalf("start: %v", err)
	}
	if _, err := cl.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
		cancel()
		srv.Close()
		t.Fatalf("initialize: %v", err)
	}
	return cl, func() {
		cancel()
		_ = cl.Close()
		srv.Close()
	}
}

func TestToolsMirrorRegistry(t *testing.T) {
	cl, done := startMCP(t)
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tools, err := cl.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("tools/list: %v", err)
	}
	want := schema.Default().List()
	if len(tools.Tools) != len(want) {
		t.Fatalf("listed %d tools; want %d", len(tools.Tools), len(want))
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, a := range want {
		if !names[a.Name] {
			t.Fatalf("tool %s missing", a.Name)
		}
	}
}

func TestCallToolDispatches(t *testing.T) {
	cl, done := startMCP(t)
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := mcp.CallToolRequest{}
	req.Params.Name = "getHosts"
	req.Params.Arguments = map[string]any{}
	res, err := cl.CallTool(ctx, req)
	if err != nil {
		t.Fatalf("tools/call: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("content %T is not text", res.Content[0])
	}
	if !strings.Contains(text.Text, `"hostid":"1"`) {
		t.Fatalf("unexpected text %q", text.Text)
	}
}

func TestCallToolValidationError(t *testing.T) {
	cl, done := startMCP(t)
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := mcp.CallToolRequest{}
	req.Params.Name = "getHistory"
	req.Params.Arguments = map[string]any{}
	res, err := cl.CallTool(ctx, req)
	if err != nil {
		t.Fatalf("tools/call: %v", err)
	}
	if !res.IsError {
		t.Fatalf("getHistory without itemids must produce a tool error")
	}
}
