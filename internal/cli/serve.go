package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"partsmcp/internal/config"
	"partsmcp/internal/logging"
	"partsmcp/internal/mcp"
	"partsmcp/internal/media"
	"partsmcp/internal/store"
)

type serveFlags struct {
	transport string
	listen    string
	mcpPath   string
	db        string
}

func newServeCmd(g *GlobalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parts catalog as MCP tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, g, f)
		},
	}
	cmd.Flags().StringVar(&f.transport, "transport", config.TransportStdio, "transport: stdio|http")
	cmd.Flags().StringVar(&f.listen, "listen", "", "host:port to listen on (http transport)")
	cmd.Flags().StringVar(&f.mcpPath, "mcp-path", "", "HTTP path for the MCP endpoint")
	cmd.Flags().StringVar(&f.db, "db", "", "path to the jlcparts SQLite catalog")
	return cmd
}

// Precedence: flags > env > file > defaults. Only flags the user set override.
func (f *serveFlags) apply(cmd *cobra.Command, o *config.Overrides) {
	if cmd.Flags().Changed("transport") {
		o.ServerTransport = &f.transport
	}
	if cmd.Flags().Changed("listen") {
		o.ServerListen = &f.listen
	}
	if cmd.Flags().Changed("mcp-path") {
		o.ServerMCPPath = &f.mcpPath
	}
	if cmd.Flags().Changed("db") {
		o.CatalogPath = &f.db
	}
}

func runServe(cmd *cobra.Command, g *GlobalFlags, f *serveFlags) error {
	overrides := g.overrides(cmd)
	f.apply(cmd, overrides)
	cfg, err := config.Load(config.Options{
		ConfigPath: g.ConfigPath,
		Overrides:  overrides,
	})
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := store.Open(ctx, cfg.Catalog.Path)
	if err != nil {
		logger.Error("open catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		return withExitCode(ExitCatalogOpenFailure, fmt.Errorf("cannot open catalog: %w", err))
	}
	defer func() { _ = catalog.Close() }()

	fetcher := media.NewHTTPFetcher(time.Duration(cfg.Media.TimeoutSeconds)*time.Second, cfg.Media.UserAgent)
	dispatcher, err := mcp.NewDispatcher(catalog, media.NewResolver(fetcher), logger)
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(dispatcher, mcp.ServerOptions{
		Name:           "partsmcp",
		Version:        Version,
		MCPPath:        cfg.Server.MCPPath,
		Logger:         logger,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})
	if err != nil {
		return err
	}

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		listener, err := net.Listen("tcp", cfg.Server.Listen)
		if err != nil {
			return withExitCode(ExitBindFailure, fmt.Errorf("server bind failure: %w", err))
		}
		return server.Serve(ctx, listener)
	default:
		if IsTTY(os.Stdin) {
			logger.Warn("stdio transport is reading from a terminal; partsmcp expects an MCP client on stdin")
		}
		logger.Info("serving mcp over stdio", zap.String("catalog", cfg.Catalog.Path))
		err := server.ServeStdio(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// IsTTY reports whether f is a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
