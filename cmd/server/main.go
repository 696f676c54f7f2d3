package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lcu-tools/dodgewatch/internal/appstate"
	"github.com/lcu-tools/dodgewatch/internal/config"
	"github.com/lcu-tools/dodgewatch/internal/dodge"
	"github.com/lcu-tools/dodgewatch/internal/httpapi"
	"github.com/lcu-tools/dodgewatch/internal/lcu"
	"github.com/lcu-tools/dodgewatch/internal/opgg"
)

type settings struct {
	Addr          string        `env:"DODGEWATCH_ADDR" envDefault:"127.0.0.1:8080"`
	Lockfile      string        `env:"LCU_LOCKFILE" envDefault:"C:/Riot Games/League of Legends/lockfile"`
	PollInterval  time.Duration `env:"LCU_POLL_INTERVAL" envDefault:"2s"`
	WatchInterval time.Duration `env:"DODGE_WATCH_INTERVAL" envDefault:"1s"`
	StatsEndpoint string        `env:"STATS_API_URL" envDefault:"https://mcp-api.op.gg/mcp"`
	ConfigPath    string        `env:"DODGEWATCH_CONFIG"`
}

func main() {
	_ = godotenv.Load()

	var cfg settings
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("exited", zap.Error(err))
	}
}

func run(cfg settings, log *zap.Logger) error {
	path := cfg.ConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	store, err := config.Open(path, log.Named("config"))
	if err != nil {
		return err
	}

	conn := appstate.NewConnection(func(info lcu.ClientInfo) lcu.Client {
		return lcu.NewRESTClient(info, log.Named("lcu"))
	}, log.Named("appstate"))
	watch := dodge.NewWatch(log.Named("dodge"))
	stats := opgg.NewClient(cfg.StatsEndpoint, log.Named("opgg"))
	monitor := lcu.NewMonitor(cfg.Lockfile, cfg.PollInterval, log.Named("monitor"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return monitor.Run(ctx) })
	g.Go(func() error { return conn.Consume(ctx, monitor.Events()) })
	g.Go(func() error {
		return dodge.NewRunner(watch, conn, cfg.WatchInterval, log.Named("dodge")).Run(ctx)
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Conn:   conn,
			Config: store,
			Watch:  watch,
			Stats:  stats,
			Log:    log.Named("httpapi"),
		}),
	}
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
