package main

import (
	"context"
	"database/sql"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/jsonlog"
	"CricketScoreApi/internal/mailer"
	"CricketScoreApi/internal/matchhub"
	"CricketScoreApi/internal/notifier"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type config struct {
	version string
	port    int
	env     string
	db      struct {
		dsn          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  string
	}
	redis struct {
		addr     string
		password string
		db       int
	}
	limiter struct {
		rps     float64
		burst   int
		enabled bool
	}
	smtp struct {
		host      string
		port      int
		username  string
		password  string
		sender    string
		resultsTo string
	}
	push struct {
		vapidPublicKey string
	}
	cors struct {
		trustedOrigins []string
	}
}

type application struct {
	logger   *jsonlog.Logger
	config   config
	models   data.Models
	mailer   mailer.Mailer
	notifier *notifier.Notifier
	hubs     *matchhub.HubModel
	wg       sync.WaitGroup
}

func main() {
	// Secrets come from the environment; .env files are a convenience for
	// development and are ignored when absent.
	_ = godotenv.Load()

	var cfg config

	// Server Config
	cfg.version = "1.0.0"
	flag.IntVar(&cfg.port, "port", 8008, "http server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment (development|staging|production)")

	// Database Config
	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("CRICKET_DB_DSN"), "DB connection string")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConns, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flag.StringVar(&cfg.db.maxIdleTime, "db-max-idle-time", "15m",
		"PostgreSQL max connection idle time")

	// Redis Config
	flag.StringVar(&cfg.redis.addr, "redis-addr", envOr("CRICKET_REDIS_ADDR", "localhost:6379"),
		"Redis address for event streams")
	flag.StringVar(&cfg.redis.password, "redis-password", os.Getenv("CRICKET_REDIS_PASSWORD"),
		"Redis password")
	flag.IntVar(&cfg.redis.db, "redis-db", 0, "Redis database number")

	// Limiter Config
	flag.Float64Var(&cfg.limiter.rps, "limiter-rps", 2, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 4, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")

	// SMTP Config
	flag.StringVar(&cfg.smtp.host, "smtp-host", envOr("CRICKET_SMTP_HOST",
		"sandbox.smtp.mailtrap.io"), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("CRICKET_SMTP_USERNAME"),
		"SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("CRICKET_SMTP_PASSWORD"),
		"SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender",
		"Club Scoring <no-reply@cricketscore.club>", "SMTP sender")
	flag.StringVar(&cfg.smtp.resultsTo, "smtp-results-to", os.Getenv("CRICKET_RESULTS_TO"),
		"Mailing list address for match result summaries")

	// Push Config
	flag.StringVar(&cfg.push.vapidPublicKey, "vapid-public-key",
		os.Getenv("CRICKET_VAPID_PUBLIC_KEY"), "VAPID public key for web push subscriptions")

	// CORS Config
	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		origins := strings.Fields(val)
		if i := slices.Index(origins, "*"); i != -1 {
			return errors.New("cannot set CORS trusted origin to \"*\" with authorization header" +
				" in cross-origin requests")
		}
		cfg.cors.trustedOrigins = origins
		return nil
	})

	// Version
	displayVersion := flag.Bool("version", false, "Show API version and immediately exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version: %s\n", cfg.version)
		os.Exit(0)
	}

	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	db, err := openDB(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	events := notifier.New(cfg.redis.addr, cfg.redis.password, cfg.redis.db, logger)
	defer events.Close()
	if err := pingRedis(events); err != nil {
		logger.PrintError(err, map[string]string{"addr": cfg.redis.addr})
	} else {
		logger.PrintInfo("redis connection established", nil)
	}

	expvar.NewString("version").Set(cfg.version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("database", expvar.Func(func() any {
		return db.Stats()
	}))
	expvar.Publish("timestamp", expvar.Func(func() any {
		return time.Now().Unix()
	}))

	models := data.NewModels(db)

	app := &application{
		logger:   logger,
		config:   cfg,
		models:   models,
		notifier: events,
		mailer: mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password,
			cfg.smtp.sender),
	}
	app.hubs = matchhub.NewModel(&models.Matches, events, logger)

	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func pingRedis(n *notifier.Notifier) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return n.Ping(ctx)
}

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)
	duration, err := time.ParseDuration(cfg.db.maxIdleTime)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(duration)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}
