package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartcalendar/api"
	"smartcalendar/auth"
	"smartcalendar/config"
	"smartcalendar/database"
	"smartcalendar/email"

	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

func main() {
	app := &cli.App{
		Name:  "smartcalendar",
		Usage: "SmartCalendar backend server",
		Before: func(ctx *cli.Context) error {
			level := slog.LevelInfo
			switch ctx.String("log-level") {
			case "debug":
				level = slog.LevelDebug
			case "warn":
				level = slog.LevelWarn
			case "error":
				level = slog.LevelError
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "Apply the database schema before serving",
						Value: true,
					},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the database schema and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err != nil {
			slog.ErrorContext(ctx.Context, err.Error())
		}
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*config.Config, *sql.DB, error) {
	conf, err := config.Parse()
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "could not parse config")
	}

	slog.InfoContext(ctx, "attempting to connect to database")
	db, err := database.Connect(conf.PostgresDSN, conf.DBMaxIdleConns)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "database connect")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, pkgerrors.Wrap(err, "database ping")
	}
	slog.InfoContext(ctx, "successfully connected to database")
	return conf, db, nil
}

func migrate(ctx *cli.Context) error {
	_, db, err := connect(ctx.Context)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx.Context, db); err != nil {
		return pkgerrors.WithStack(err)
	}
	slog.InfoContext(ctx.Context, "database schema applied")
	return nil
}

func newMailer(conf *config.Config) *email.Client {
	send := email.NewLogSender()
	if conf.Brevo.APIKey != "" {
		send = email.NewBrevoSender(conf.Brevo.APIKey, conf.Brevo.BaseURL, nil)
	}
	limiter := rate.NewLimiter(rate.Every(conf.Email.RateInterval), 1)
	return email.NewClient(email.WithRateLimit(send, limiter))
}

func serve(cliCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if cliCtx.Bool("migrate") {
		if err := database.Migrate(ctx, db); err != nil {
			return pkgerrors.WithStack(err)
		}
	}

	loc, err := conf.Location()
	if err != nil {
		return err
	}

	service := api.NewAPI(db, api.Options{
		Auth: auth.Options{
			Config: auth.Config{
				Secret:    conf.JWT.Secret,
				Issuer:    conf.JWT.Issuer,
				AccessTTL: conf.JWT.AccessTTL,
			},
			RefreshTTL: conf.JWT.RefreshTTL,
			OTPTTL:     conf.Email.OTPTTL,
			ResetTTL:   conf.Email.ResetTTL,
			PublicURL:  conf.PublicURL,
		},
		Mailer:      newMailer(conf),
		Location:    loc,
		CORSOrigins: conf.CORSOrigins,
	})
	service.RegisterRoutes()

	scheduler := cron.New(cron.WithLocation(loc))
	prune := auth.PruneJob(ctx, auth.NewAccessor(db), time.Now)
	if _, err := scheduler.AddFunc(conf.PruneSchedule, prune); err != nil {
		return pkgerrors.Wrapf(err, "invalid prune schedule %q", conf.PruneSchedule)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	server := &http.Server{
		Addr:              net.JoinHostPort("", conf.Port),
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "server starting", "port", conf.Port)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return pkgerrors.Wrap(err, "listen and serve")
		}
		return nil
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return pkgerrors.Wrap(err, "shutdown")
	}
	return nil
}
