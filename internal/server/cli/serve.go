package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/api"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/config"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/middleware"
	router "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/repository"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/service"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/session"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/view"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// NewServeCmd создаёт CLI-команду запуска HTTP(S)-сервера.
//
// Сервер работает до SIGINT/SIGTERM/SIGQUIT, затем корректно завершается
// с таймаутом server.shutdown_timeout.
//
// Пример использования:
//
//	vaxreport serve --config ./configs/server.yaml
func NewServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(
				cmd.Context(),
				os.Interrupt,
				syscall.SIGTERM,
				syscall.SIGQUIT,
			)
			defer stop()

			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			return runServer(ctx, cfg)
		},
	}
}

// runServer собирает зависимости и держит сервер до отмены ctx.
func runServer(ctx context.Context, cfg *config.Config) error {
	httpLogger, err := logger.NewHTTPLogger(cfg.Log.Options())
	if err != nil {
		return err
	}
	defer httpLogger.Sync()
	sugar := httpLogger.Sugar()

	// подключаем базу данных
	db, err := OpenDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrations.Enabled {
		if err := Migrate(db, cfg.Migrations.Path, config.MigrateUp, sugar); err != nil {
			return err
		}
	}

	// хранилище сессий: таблица sessions или redis
	var store session.Store = repository.NewSessionsRepository(db)
	if cfg.Sessions.Store == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Sessions.Redis.Addr,
			Password: cfg.Sessions.Redis.Password,
			DB:       cfg.Sessions.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("error check redis connection: %w", err)
		}
		store = session.NewRedisStore(rdb, cfg.Sessions.Redis.TTL)
	}

	// создаём репы и сервисы
	repos := service.Repositories{
		Users:    repository.NewUsersRepository(db),
		Reports:  repository.NewReportsRepository(db),
		Sessions: store,
	}
	svc, err := service.NewServices(repos, cfg)
	if err != nil {
		return err
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}
	sessions := session.NewManager(store, session.Options{
		CookieName: cfg.Sessions.CookieName,
		Secure:     cfg.Sessions.CookieSecure,
	}, httpLogger)
	handler := api.NewHandler(svc, sessions, renderer, httpLogger)

	opts := router.Options{MaxBodyBytes: cfg.Server.MaxBodyBytes}
	if cfg.Observability.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = middleware.NewMetrics(reg)
		opts.MetricsPath = cfg.Observability.Metrics.Path
		opts.Gatherer = reg
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(handler, opts),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		sugar.Infof("server started on %s (tls=%t)", server.Addr, cfg.TLS.Enabled)

		var err error
		if cfg.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-gctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	// ожидание и единая обработка ошибок
	if err := g.Wait(); err != nil {
		sugar.Errorf("server stopped with error: %v", err)
		return err
	}
	sugar.Info("server gracefully stopped")
	return nil
}
