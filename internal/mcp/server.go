package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"partsmcp/internal/metrics"
	"partsmcp/internal/protocol"
)

// ServerOptions for running the MCP server.
type ServerOptions struct {
	Name    string
	Version string
	MCPPath string
	Logger  *zap.Logger
	// RateLimitRPS and RateLimitBurst bound requests per client IP on the
	// HTTP transport. Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server exposes a Dispatcher over MCP. Framing and session handling are
// left to mcp-go.
type Server struct {
	opts       ServerOptions
	dispatcher *Dispatcher
	mcp        *mcpserver.MCPServer
	limiter    *ipRateLimiter
	logger     *zap.Logger
}

func NewServer(d *Dispatcher, opts ServerOptions) (*Server, error) {
	if d == nil {
		return nil, errors.New("dispatcher is required")
	}
	if opts.Name == "" {
		opts.Name = "partsmcp"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.MCPPath == "" {
		opts.MCPPath = protocol.DefaultMCPPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		opts:       opts,
		dispatcher: d,
		logger:     logger,
		limiter:    newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		mcp: mcpserver.NewMCPServer(opts.Name, opts.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithRecovery(),
		),
	}
	for _, tool := range d.orderedTools() {
		raw, err := tool.InputSchema.RawSchema()
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", tool.Name, err)
		}
		s.mcp.AddTool(mcpgo.NewToolWithRawSchema(tool.Name, tool.Description, raw), s.callTool(tool.Name))
	}
	return s, nil
}

func (s *Server) callTool(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		res, err := s.dispatcher.Call(ctx, name, req.GetArguments())
		if err != nil {
			return nil, err
		}
		return toCallToolResult(res), nil
	}
}

func toCallToolResult(res ToolResult) *mcpgo.CallToolResult {
	out := &mcpgo.CallToolResult{IsError: res.IsError}
	for _, item := range res.Content {
		switch item.Type {
		case "image":
			out.Content = append(out.Content, mcpgo.NewImageContent(item.Data, item.MIMEType))
		default:
			out.Content = append(out.Content, mcpgo.NewTextContent(item.Text))
		}
	}
	return out
}

// ServeStdio serves newline-delimited JSON-RPC on in/out until in is closed
// or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// MCPHandler returns the Streamable HTTP handler for the MCP path (for mounting on a shared mux).
func (s *Server) MCPHandler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcp)
}

// Serve blocks while handling HTTP on the MCP path and /metrics.
// Cancel ctx to initiate graceful shutdown; in-flight requests are allowed to drain.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(s.opts.MCPPath, s.limiter.middleware(s.MCPHandler()))
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}
	s.logger.Info("serving mcp over http",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", s.opts.MCPPath))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
