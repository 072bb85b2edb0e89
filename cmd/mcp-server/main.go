// cmd/mcp-server/main.go — MCP server for the fgh algebra
//
// Usage:
//
//	mcp-server --mode stdio
//	mcp-server --mode http --listen-address :8080 --metrics-address :9100
//	mcp-server call fgh_norm '{"vector": [3, 4]}'
//
// Every flag can also be set through FGH_<FLAG> environment variables or a
// YAML file named by --config.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gofgh/internal/config"
	"github.com/njchilds90/gofgh/internal/tools"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve value/gradient/Hessian arithmetic over the Model Context Protocol",
		Long: `Start an MCP server exposing fgh_apply, fgh_norm, fgh_identity and fgh_det.

In stdio mode the protocol runs on stdin/stdout and logs go to stderr.
In http mode the streamable HTTP transport listens on --listen-address.
With --metrics-address set, /metrics, /health and /schema are served there.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg, log); err != nil {
				log.WithError(err).Error("server stopped")
				return err
			}
			return nil
		},
	}
	config.BindFlags(cmd.PersistentFlags())
	cmd.AddCommand(newCallCommand())
	return cmd
}

func load(cmd *cobra.Command) (config.Config, *logrus.Logger, error) {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, errors.WithMessage(err, "invalid configuration")
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	log.SetOutput(cmd.ErrOrStderr())
	return cfg, log, nil
}

func newToolServer(cfg config.Config, log logrus.FieldLogger, reg prometheus.Registerer) *tools.Server {
	return tools.New(log, tools.NewMetrics(reg), tools.Limits{
		MaxDimension: cfg.MaxDimension,
		MaxDetOrder:  cfg.MaxDetOrder,
	})
}

func newMCPServer(t *tools.Server, log logrus.FieldLogger) *server.MCPServer {
	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		log.WithField("session", session.SessionID()).Info("client session registered")
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		log.WithField("session", session.SessionID()).Info("client session unregistered")
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		log.WithError(err).WithField("method", method).Warn("request failed")
	})

	s := server.NewMCPServer("gofgh", version,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithHooks(hooks),
	)
	s.AddTools(t.Tools()...)
	s.AddPrompts(t.Prompts()...)
	return s
}

// serve runs the MCP transport and the optional admin endpoint until ctx is
// cancelled or one of them fails.
func serve(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	t := newToolServer(cfg, log, reg)
	mcpServer := newMCPServer(t, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddress != "" {
		admin := newAdminServer(cfg.MetricsAddress, reg, t)
		g.Go(func() error {
			log.WithField("address", cfg.MetricsAddress).Info("serving /metrics, /health and /schema")
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.WithMessage(err, "admin server")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return shutdown(admin.Shutdown, cfg.ShutdownTimeout)
		})
	}

	switch cfg.Mode {
	case config.ModeStdio:
		stdio := server.NewStdioServer(mcpServer)
		stdio.SetErrorLogger(stdlog.New(log.WriterLevel(logrus.ErrorLevel), "", 0))
		g.Go(func() error {
			defer cancel()
			log.Info("starting stdio MCP server")
			err := stdio.Listen(ctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return errors.WithMessage(err, "stdio server")
			}
			return nil
		})
	case config.ModeHTTP:
		httpServer := server.NewStreamableHTTPServer(mcpServer)
		g.Go(func() error {
			log.WithField("address", cfg.ListenAddress).Info("starting streamable HTTP MCP server")
			if err := httpServer.Start(cfg.ListenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.WithMessage(err, "http server")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return shutdown(httpServer.Shutdown, cfg.ShutdownTimeout)
		})
	}

	err := g.Wait()
	log.Info("shutdown complete")
	return err
}

func shutdown(fn func(context.Context) error, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return fn(ctx)
}
