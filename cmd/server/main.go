package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	_ "github.com/sbilibin2017/gw-credit-sum/docs"
	"github.com/sbilibin2017/gw-credit-sum/internal/config"
	"github.com/sbilibin2017/gw-credit-sum/internal/jwt"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/mail"
	"github.com/sbilibin2017/gw-credit-sum/internal/middlewares"
	"github.com/sbilibin2017/gw-credit-sum/internal/migrations"
	"github.com/sbilibin2017/gw-credit-sum/internal/repositories"
	"github.com/sbilibin2017/gw-credit-sum/internal/routes"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

const shutdownTimeout = 10 * time.Second

// @title gw-credit-sum API
// @version 1.0.0
// @description Authentication, credit ledger and a credit-metered sum operation
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Parse(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// run connects the stores, bootstraps the superuser and serves HTTP until
// ctx is cancelled or a shutdown signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel, cfg.LogDir); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	if err := migrations.Up(ctx, db.DB); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka is optional
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("Kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	mailer, err := mail.New(mail.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		From:        cfg.EmailsFrom,
		FrontendURL: cfg.FrontendURL,
	})
	if err != nil {
		return fmt.Errorf("initialize mailer: %w", err)
	}
	if !mailer.IsEnabled() {
		logger.Log.Warn("SMTP is not configured, reset links will only be logged")
	}

	// Initialize JWT service
	tokens := jwt.New(jwt.WithSecretKey(cfg.JWTSecretKey), jwt.WithExpiration(cfg.JWTExp))

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	creditRepo := repositories.NewCreditRepository(db, middlewares.GetTxFromContext)
	resetTokenRepo := repositories.NewResetTokenRepository(rdb, cfg.ResetTokenExp)

	// Initialize services
	creditService := services.NewCreditService(creditRepo, cfg.DefaultUserCredits, kafkaWriter)
	authService := services.NewAuthService(userReadRepo, userWriteRepo, creditService, tokens, resetTokenRepo, mailer)
	userService := services.NewUserService(userReadRepo, userWriteRepo, creditService, cfg.DefaultUserCredits)
	sumService := services.NewSumService(creditService)
	guardService := services.NewGuardService(tokens, userReadRepo)

	if cfg.SuperuserEmail != "" {
		if _, err := authService.EnsureSuperuser(ctx, cfg.SuperuserEmail, cfg.SuperuserPassword); err != nil {
			return fmt.Errorf("bootstrap superuser: %w", err)
		}
	}

	addr := net.JoinHostPort(cfg.AppHost, cfg.AppPort)
	router := routes.NewRouter(routes.Deps{
		Auth:              authService,
		Users:             userService,
		Credits:           creditService,
		Sum:               sumService,
		Tokens:            tokens,
		Guard:             guardService,
		DB:                db,
		AuthLimiter:       middlewares.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst),
		CORSOrigins:       cfg.CORSAllowedOrigins,
		AllowedHosts:      cfg.AllowedHosts,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		SwaggerURL:        fmt.Sprintf("http://%s/swagger/doc.json", addr),
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
