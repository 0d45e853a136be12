// Package mcpserver exposes the bridge's action surface as a Model Context
// Protocol server over streamable HTTP. Tools are generated from the schema
// registry, and every tool call funnels through the shared Dispatcher, so an
// MCP agent and a raw HTTP caller see identical behavior.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	sdkserver "github.com/mark3labs/mcp-go/server"

	"github.com/zbridge-io/zbridge/internal/dispatch"
	"github.com/zbridge-io/zbridge/internal/schema"
)

// NewHandler constructs a streamable HTTP MCP handler whose tools mirror the
// dispatcher's registry.
func NewHandler(d *dispatch.Dispatcher, version string) http.Handler {
	srv := NewServer(d, version)
	return sdkserver.NewStreamableHTTPServer(
		srv,
		sdkserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return ctx
		}),
	)
}

// NewServer builds the MCP server with one tool per registry action. Split
// from NewHandler so tests can drive it in-process.
func NewServer(d *dispatch.Dispatcher, version string) *sdkserver.MCPServer {
	srv := sdkserver.NewMCPServer(
		"zbridge",
		version,
		sdkserver.WithResourceCapabilities(false, false),
		sdkserver.WithPromptCapabilities(false),
		sdkserver.WithToolCapabilities(false),
	)
	for _, a := range d.Registry().List() {
		srv.AddTool(toolFor(a), handlerFor(d, a.Name))
	}
	return srv
}

// toolFor converts one action descriptor into an MCP tool declaration.
func toolFor(a *schema.Action) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(a.Description)}
	for name, p := range a.Params {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(name, popts...))
		case "object":
			opts = append(opts, mcp.WithObject(name, popts...))
		case "array":
			opts = append(opts, mcp.WithArray(name, popts...))
		default:
			opts = append(opts, mcp.WithString(name, popts...))
		}
	}
	return mcp.NewTool(a.Name, opts...)
}

// handlerFor adapts a registry action to an MCP tool handler. Dispatcher
// errors come back as tool errors, not transport errors, so the MCP session
// survives a failed call.
func handlerFor(d *dispatch.Dispatcher, action string) sdkserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := d.Dispatch(ctx, dispatch.Request{
			JSONRPC: "2.0",
			Method:  action,
			Params:  req.GetArguments(),
			ID:      action,
		})
		if resp.Error != nil {
			return mcp.NewToolResultError(resp.Error.Message), nil
		}
		return mcp.NewToolResultText(string(resp.Result)), nil
	}
}
