// Package mcpsrv exposes the boundary operations of an App as Model Context
// Protocol tools, so the renderer (or any MCP client) can drive the state
// store over stdio.
package mcpsrv

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/xyzj/toolbox/json"

	"github.com/xyzj/visionchat"
)

type (
	// Opt contains options for a Server.
	Opt struct {
		name    string
		version string
		logg    zerolog.Logger
	}
	// Opts is a function type for configuring a Server.
	Opts func(opt *Opt)
)

// WithName sets the implementation name announced to clients.
func WithName(name string) Opts {
	return func(opt *Opt) {
		opt.name = name
	}
}

// WithVersion sets the implementation version announced to clients.
func WithVersion(v string) Opts {
	return func(opt *Opt) {
		opt.version = v
	}
}

// WithLogger sets the logger for transport errors.
func WithLogger(l zerolog.Logger) Opts {
	return func(opt *Opt) {
		opt.logg = l
	}
}

// Server serves one App over MCP. Every catalog operation becomes a tool of
// the same name; the tool result text is the JSON envelope of the call.
type Server struct {
	app  *visionchat.App
	mcp  *server.MCPServer
	logg zerolog.Logger
}

// New creates a Server for app with every operation registered.
func New(app *visionchat.App, opts ...Opts) *Server {
	opt := &Opt{
		name:    "visionchat",
		version: "1.0.0",
		logg:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(opt)
	}
	s := &Server{
		app:  app,
		mcp:  server.NewMCPServer(opt.name, opt.version, server.WithToolCapabilities(false)),
		logg: opt.logg,
	}
	for _, op := range visionchat.Operations {
		s.mcp.AddTool(tool(op), s.handler(op.Name))
	}
	return s
}

// tool converts a catalog entry into an MCP tool definition.
func tool(op visionchat.Operation) mcp.Tool {
	topts := []mcp.ToolOption{mcp.WithDescription(op.Description)}
	for _, p := range op.Params {
		popts := []mcp.PropertyOption{mcp.Required(), mcp.Description(p.Description)}
		switch p.Type {
		case "object":
			topts = append(topts, mcp.WithObject(p.Name, popts...))
		case "number":
			topts = append(topts, mcp.WithNumber(p.Name, popts...))
		default:
			topts = append(topts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(op.Name, topts...)
}

func (s *Server) handler(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		env := s.app.Invoke(ctx, op, args)
		text, err := json.MarshalToString(env)
		if err != nil {
			return nil, err
		}
		if !env.Success {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Listen serves JSON-RPC over in and out until ctx is done or in is closed.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	err := stdio.Listen(ctx, in, out)
	if err != nil && ctx.Err() == nil {
		s.logg.Error().Err(err).Msg("mcp transport stopped")
	}
	return err
}
