package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/npezzotti/go-opschat/internal/api"
	"github.com/npezzotti/go-opschat/internal/chat"
	"github.com/npezzotti/go-opschat/internal/config"
	"github.com/npezzotti/go-opschat/internal/database"
	"github.com/npezzotti/go-opschat/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	allowedOrigins stringSliceFlag
	strictStatus   bool
	runMigrations  bool
)

func main() {
	logger := log.New(os.Stderr, "[ops-chat] ", log.LstdFlags)

	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		logger.Println("load .env:", err)
	}

	flag.StringVar(&addr, "addr", config.EnvOr("OPSCHAT_ADDR", "localhost:8000"), "server address")
	flag.StringVar(&dsn, "dsn", config.EnvOr("OPSCHAT_DSN", "host=localhost user=postgres password=postgres dbname=opschat sslmode=disable"), "database connection string")
	flag.StringVar(&signingKey, "signing-key", os.Getenv("OPSCHAT_SIGNING_KEY"), "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.BoolVar(&strictStatus, "strict-status", config.EnvBool("OPSCHAT_STRICT_STATUS", false), "only allow open -> in_progress -> resolved -> closed status changes")
	flag.BoolVar(&runMigrations, "migrate", config.EnvBool("OPSCHAT_MIGRATE", true), "apply schema migrations on startup")
	flag.Parse()

	if len(allowedOrigins) == 0 {
		if origins := os.Getenv("OPSCHAT_ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins.Set(origins)
		}
	}

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}
	cfg.StrictStatus = strictStatus
	cfg.Migrate = runMigrations

	dbConn, err := database.NewPgChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if cfg.Migrate {
		if err := dbConn.Migrate(); err != nil {
			logger.Fatal("migrate:", err)
		}
	}

	var policy chat.StatusPolicy = chat.PermissiveStatusPolicy{}
	if cfg.StrictStatus {
		policy = chat.LinearStatusPolicy{}
	}
	svc := chat.NewService(logger, dbConn, policy)

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux, stats.DefaultMetrics...)

	srv := api.NewOpsChatApp(mux, logger, svc, statsUpdater, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
