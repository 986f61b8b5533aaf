package cli

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/risus/internal/api"
	"github.com/cory-johannsen/risus/internal/observability"
	"github.com/cory-johannsen/risus/internal/server"
	"github.com/cory-johannsen/risus/internal/tables"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the odds API over HTTP",
	Long: `Serve the odds API:

  GET /healthz
  GET /metrics
  GET /v1/rulesets
  GET /v1/rulesets/{id}/probability?pool=&target=
  GET /v1/rulesets/{id}/failures?pool=&target=
  GET /v1/rulesets/{id}/table?max_pool=&max_target=&precision=

With grpc.enabled, grpc.health.v1 is served on grpc.port for the server
("") and for each loaded ruleset as "risus/<id>".

Runs until interrupted; in-flight requests are drained on shutdown.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	fs := serveCmd.Flags()
	fs.String("host", "", "listen host")
	fs.Int("port", 0, "listen port")
	bindFlag(fs, "host", "http.host")
	bindFlag(fs, "port", "http.port")

	fs.Bool("grpc", false, "serve gRPC health checks")
	fs.Int("grpc-port", 0, "gRPC health listen port")
	bindFlag(fs, "grpc", "grpc.enabled")
	bindFlag(fs, "grpc-port", "grpc.port")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	metrics := observability.NewMetrics()

	svc, closeStore, err := newService(cmd.Context(), a, tables.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer closeStore()

	handler := api.New(svc, a.registry, a.logger, a.cfg.HTTP, metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: a.cfg.HTTP.ReadHeaderTimeout,
	}

	lc := server.NewLifecycle(a.logger)
	lc.Add("http", server.NewHTTPService(srv, shutdownTimeout))
	if a.cfg.GRPC.Enabled {
		health, err := newHealthService(a)
		if err != nil {
			return err
		}
		lc.Add("grpc-health", health)
	}
	a.logger.Info("serving odds API", zap.String("addr", srv.Addr), zap.String("default_ruleset", a.policy.ID))
	return lc.Run(cmd.Context())
}

// newHealthService binds grpc.port up front and reports one health entry per
// loaded ruleset.
func newHealthService(a *app) (server.Service, error) {
	addr := a.cfg.GRPC.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	policies := a.registry.All()
	names := make([]string, 0, len(policies))
	for _, p := range policies {
		names = append(names, "risus/"+p.ID)
	}
	srv := grpc.NewServer()
	hs := server.RegisterHealth(srv, names...)

	a.logger.Info("serving gRPC health", zap.String("addr", lis.Addr().String()), zap.Strings("services", names))
	return server.NewGRPCService(srv, lis, hs), nil
}
