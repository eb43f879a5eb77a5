package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gartstein/clubhire/internal/hiring/auth"
	"github.com/gartstein/clubhire/internal/hiring/config"
	"github.com/gartstein/clubhire/internal/hiring/controller"
	"github.com/gartstein/clubhire/internal/hiring/db"
	"github.com/gartstein/clubhire/internal/hiring/events"
	"github.com/gartstein/clubhire/internal/hiring/handlers"
	"github.com/gartstein/clubhire/internal/hiring/mailer"
	"github.com/gartstein/clubhire/internal/hiring/ratelimit"
	"github.com/gartstein/clubhire/internal/hiring/summarizer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// outbox is the notification producer the services write to.
type outbox interface {
	controller.EventProducer
	Close()
}

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("internal", "hiring", "config", "config.yaml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := db.NewRepository(cfg.Database())
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mail := mailer.New(cfg.Mailer(), logger)
	producer, consumer, err := initOutbox(ctx, cfg, mail, logger)
	if err != nil {
		logger.Fatal("failed to initialize notification outbox", zap.Error(err))
	}

	var resumes controller.ResumeSummarizer
	if sumCfg, ok := cfg.Summarizer(); ok {
		sumCfg.PDF = initPDFLicense(cfg.UnidocLicenseKey, logger)
		resumes = summarizer.New(sumCfg)
	} else {
		logger.Info("No OPENAI_API_KEY configured, resume summaries disabled")
	}

	var limiter handlers.RateLimiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		limiter = ratelimit.NewLimiter(client, cfg.RateLimit, cfg.RateLimitWindow, logger)
	}

	notifyOn, err := cfg.Statuses()
	if err != nil {
		logger.Fatal("invalid notification statuses", zap.Error(err))
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	accounts := controller.NewAccountService(repo, issuer, logger)
	if cfg.AdminUsername != "" {
		if err := accounts.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			logger.Fatal("failed to bootstrap admin account", zap.Error(err))
		}
	}

	svc := handlers.Services{
		Applications: controller.NewApplicationService(repo, producer, resumes, notifyOn, logger),
		Accounts:     accounts,
		Team:         controller.NewTeamService(repo, producer, cfg.PublicURL, logger),
		Events:       controller.NewEventService(repo, producer, logger),
		Content:      controller.NewContentService(repo, logger),
	}

	proxies, err := handlers.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("invalid TRUSTED_PROXIES", zap.Error(err))
	}

	sessions := auth.NewMiddleware(issuer, "/login")
	handler := handlers.NewHandler(svc, sessions, limiter, proxies, cfg.SecureCookies, logger)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	if err := server.RegisterHTTPGateway(
		ctx,
		[]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
		handler,
		sessions); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}
	server.SetServing(true)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)

	// Stop intake first, then flush whatever is still queued.
	producer.Close()
	if consumer != nil {
		cancel()
		consumer.Close()
		<-consumer.Done()
	}
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// initPDFLicense activates unipdf and reports whether PDF resumes can be
// summarised.
func initPDFLicense(key string, logger *zap.Logger) bool {
	if key == "" {
		logger.Info("No UNIDOC_LICENSE_API_KEY configured, PDF resume summaries disabled")
		return false
	}
	if err := summarizer.SetLicense(key); err != nil {
		logger.Error("PDF resume summaries disabled", zap.Error(err))
		return false
	}
	return true
}

// initOutbox picks Kafka when brokers are configured, with a consumer in
// this process relaying to the mailer. Otherwise the mailer is fed from an
// in-process queue.
func initOutbox(ctx context.Context, cfg *config.Config, mail *mailer.Mailer, logger *zap.Logger) (outbox, *events.Consumer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("No KAFKA_BROKERS configured, using in-process notification queue")
		return events.NewLocalQueue(mail, cfg.QueueSize, logger), nil, nil
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, cfg.Topic, mail, logger)
	consumer.Start(ctx)
	return producer, consumer, nil
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.SetServing(false)
	server.Stop()
	logger.Info("Servers stopped properly")
}
