package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"shop/pkg/infrastructure/mysql"
	"shop/transport"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  appID,
		Usage: "order, inventory and payment backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address, overrides SHOP_LISTEN_ADDRESS"},
				},
				Action: serve,
			},
			{
				Name:  "simulate",
				Usage: "replay the demo shopping workflow against an in-process shop",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "concurrency", Usage: "number of parallel orders fired against a scarce product"},
				},
				Action: simulate,
			},
			{
				Name:  "migrate",
				Usage: "apply MySQL schema migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "down", Usage: "roll every migration back"},
				},
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("shop failed")
	}
}

func setup() (*config, func(), error) {
	c, err := parseEnv()
	if err != nil {
		return nil, nil, err
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid log level")
	}
	log.SetLevel(level)

	cleanup := func() {}
	if c.LogFile != "" {
		file, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
			cleanup = func() { _ = file.Close() }
		} else {
			log.WithError(err).Warn("failed to open log file, logging to stderr")
		}
	}
	return c, cleanup, nil
}

func serve(ctx *cli.Context) error {
	c, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	if addr := ctx.String("addr"); addr != "" {
		c.ListenAddress = addr
	}

	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.close()

	log.WithFields(log.Fields{"url": c.ListenAddress}).Info("Starting server")

	killSignalChan := getKillSignalChan()
	srv := startServer(c.ListenAddress, transport.Router(a.services, a.metrics, a.registry))

	waitForKillSignalChan(killSignalChan)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func simulate(ctx *cli.Context) error {
	c, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.close()

	return runSimulation(ctx.Context, a.services, ctx.Int("concurrency"))
}

func migrate(ctx *cli.Context) error {
	c, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	if c.MySQLDSN == "" {
		return errors.New("SHOP_MYSQL_DSN is required to run migrations")
	}

	db, err := mysql.Open(c.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	return mysql.Migrate(db, ctx.Bool("down"))
}

func startServer(serverURL string, router http.Handler) *http.Server {
	srv := &http.Server{Addr: serverURL, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignalChan(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}
