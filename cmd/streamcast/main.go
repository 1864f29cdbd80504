package main

import (
	"context"
	"os"
	"time"

	"github.com/dmitrymomot/streamcast"
	"github.com/dmitrymomot/streamcast/pkg/config"
	"github.com/dmitrymomot/streamcast/pkg/httpserver"
	"github.com/dmitrymomot/streamcast/pkg/logger"
)

type appConfig struct {
	Addr              string        `env:"STREAMCAST_ADDR" envDefault:":8000"`
	QueueSize         int           `env:"STREAMCAST_QUEUE_SIZE" envDefault:"100"`
	HistorySize       int           `env:"STREAMCAST_HISTORY_SIZE" envDefault:"1000"`
	HeartbeatInterval time.Duration `env:"STREAMCAST_HEARTBEAT_INTERVAL" envDefault:"30s"`
	ShutdownTimeout   time.Duration `env:"STREAMCAST_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Development       bool          `env:"STREAMCAST_DEV" envDefault:"false"`
}

func main() {
	cfg := config.MustLoad[appConfig]()

	logOpts := []logger.Option{logger.WithService("streamcast")}
	if cfg.Development {
		logOpts = append(logOpts, logger.WithDevelopment())
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := streamcast.New(
		streamcast.WithLogger(log),
		streamcast.WithQueueSize(cfg.QueueSize),
		streamcast.WithHistorySize(cfg.HistorySize),
		streamcast.WithHeartbeatInterval(cfg.HeartbeatInterval),
	)
	svc.Start(ctx)
	defer svc.Stop()

	srv := httpserver.New(
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithShutdownTimeout(cfg.ShutdownTimeout),
		httpserver.WithLogger(log),
	)
	if err := srv.Run(ctx, svc.Router()); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}
