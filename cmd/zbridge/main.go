package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zbridge-io/zbridge/core/logx"
	"github.com/zbridge-io/zbridge/core/secret"
	"github.com/zbridge-io/zbridge/internal/api"
	"github.com/zbridge-io/zbridge/internal/bridge"
	"github.com/zbridge-io/zbridge/internal/config"
	"github.com/zbridge-io/zbridge/internal/dispatch"
	"github.com/zbridge-io/zbridge/internal/metrics"
	"github.com/zbridge-io/zbridge/internal/schema"
	"github.com/zbridge-io/zbridge/internal/server"
	"github.com/zbridge-io/zbridge/internal/status"
	"github.com/zbridge-io/zbridge/internal/tokenstore"
	"github.com/zbridge-io/zbridge/internal/zabbix"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")

	var cfg config.ServerConfig
	// Resolve config with precedence: defaults < file < env < args.
	cfg.SetDefaults()
	cfg.ApplyEnv()
	// Allow --config to override the file path before loading it.
	for i := 1; i < len(os.Args); i++ {
		a := os.Args[i]
		if a == "--config" && i+1 < len(os.Args) {
			cfg.ConfigFile = os.Args[i+1]
			break
		}
		if strings.HasPrefix(a, "--config=") {
			cfg.ConfigFile = strings.TrimPrefix(a, "--config=")
			break
		}
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	cfg.ApplyEnv()
	cfg.BindFlagsFromCurrent()
	flag.Parse()

	if *showVersion {
		fmt.Printf("zbridge version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}

	logx.Configure(cfg.LogLevel)
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens := tokenstore.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs, err := tokenstore.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			logx.Log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect redis")
		}
		tokens = rs
		logx.Log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session token store")
	}

	client := zabbix.NewClient(
		cfg.ZabbixURL,
		zabbix.Credentials{User: cfg.ZabbixUser, Password: cfg.ZabbixPassword},
		cfg.RequestTimeout,
		zabbix.WithTokenStore(tokens),
	)
	logx.Log.Info().
		Str("endpoint", cfg.ZabbixURL).
		Str("user", cfg.ZabbixUser).
		Str("password", secret.Mask(cfg.ZabbixPassword)).
		Msg("zabbix backend configured")

	reg := schema.Default()
	disp := dispatch.New(reg, client)
	broker := bridge.NewBroker()

	spec, err := api.LoadSpec()
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("openapi spec")
	}

	reporter := &status.Reporter{
		Version:       version,
		BuildSHA:      buildSHA,
		BuildDate:     buildDate,
		StartedAt:     time.Now(),
		Authenticated: client.Authenticated,
		OpenStreams:   broker.Len,
	}

	handler := server.New(cfg, server.Deps{
		Dispatcher: disp,
		Broker:     broker,
		Reporter:   reporter,
		Spec:       spec,
		Version:    version,
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}
	go func() {
		logx.Log.Info().Int("port", cfg.Port).Msg("zbridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Log.Fatal().Err(err).Msg("http server")
		}
	}()

	if cfg.MetricsAddr != fmt.Sprintf(":%d", cfg.Port) {
		preg := prometheus.NewRegistry()
		metrics.Register(preg)
		msrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(preg, promhttp.HandlerOpts{})}
		go func() {
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Log.Error().Err(err).Msg("metrics server")
			}
		}()
		defer func() { _ = msrv.Close() }()
	}

	<-ctx.Done()
	logx.Log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DrainTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Log.Warn().Err(err).Msg("shutdown")
	}
	// Best-effort: end the backend session on the way out.
	logoutCtx, cancelLogout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelLogout()
	_ = client.Logout(logoutCtx)
}
