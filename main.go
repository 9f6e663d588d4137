package main

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"taskboard/core"
	"taskboard/migrations"
	"taskboard/pkg/config"
	"taskboard/pkg/i18n"
	"taskboard/pkg/resources"
	"taskboard/pkg/servers"
	"taskboard/pkg/telemetry"
)

func main() {
	name, version, env := "taskboard", "1.0", "local"

	// 1. Config (Logger base included)
	ctx := config.Default(context.Background(), name, version, env)
	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 2. Telemetry (traces/metrics/logs), zerolog bridged to the OTel log pipeline
	hookFn := func(ctx context.Context) (context.Context, error) {
		log.Logger = log.Logger.Hook(resources.NewOtelLogHook(name, version))
		return log.Logger.WithContext(ctx), nil
	}

	ctx, stopTelemetry, err := telemetry.Observe(ctx, name, version, env, hookFn,
		telemetry.WithEnabled(viper.GetBool(config.OtelEnabled)),
		telemetry.WithEndpoint(viper.GetString(config.OtelEndpoint)),
		telemetry.WithInsecure())
	if err != nil {
		startupLogger.Fatal().Err(err).Msg("unable to setup otel telemetry")
	}

	// 3. Resources
	pool, err := resources.CreateDatabaseConnectionPool(ctx)
	if err != nil {
		stopTelemetry(ctx, 15*time.Second)
		startupLogger.Fatal().Err(err).Msg("unable to create database connection pool")
	}

	if viper.GetBool(config.DbMigrate) {
		err = resources.RunMigrations(ctx, pool, migrations.FS)
		if err != nil {
			pool.Close()
			stopTelemetry(ctx, 15*time.Second)
			startupLogger.Fatal().Err(err).Msg("unable to apply database migrations")
		}
	}

	translator, err := i18n.New(viper.GetString(config.AppLocale))
	if err != nil {
		pool.Close()
		stopTelemetry(ctx, 15*time.Second)
		startupLogger.Fatal().Err(err).Msg("unable to load translations")
	}

	location, err := config.Location()
	if err != nil {
		pool.Close()
		stopTelemetry(ctx, 15*time.Second)
		startupLogger.Fatal().Err(err).Msg("unable to load time zone")
	}

	// 4. Wiring
	repo := core.NewRepository(pool)
	handlers := core.NewHandlers(repo, translator, location)

	templates, err := core.NewTemplates(translator, location)
	if err != nil {
		pool.Close()
		stopTelemetry(ctx, 15*time.Second)
		startupLogger.Fatal().Err(err).Msg("unable to parse templates")
	}

	// 5. Servers
	gin.SetMode(gin.ReleaseMode)

	restHandler := core.NewRouter(handlers, templates,
		resources.TracerMiddleware(name),
		resources.MeterMiddleware(name),
		resources.RequestIdMiddleware(),
		resources.AccessLogMiddleware(),
	)

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	app := servers.NewApplication(name, version)

	app.Attach(servers.BuildHttpServer("debug-server", newServer(ctx,
		viper.GetString(config.DebugHost), viper.GetString(config.DebugPort), debugHandler)))
	app.Attach(servers.BuildHttpServer("rest-server", newServer(ctx,
		viper.GetString(config.HttpHost), viper.GetString(config.HttpPort), restHandler)))
	app.Attach(servers.BuildBaseServer(
		pool,
		resources.ClosableFunc(func() { stopTelemetry(ctx, 15*time.Second) }),
	))

	startupLogger.Info().Msg("application running")

	// 6. Run until SIGINT/SIGTERM
	err = app.Run()
	if err != nil {
		shutdownLogger.Error().Err(err).Msg("application stopped with error")
	}
}

func newServer(ctx context.Context, host string, port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
