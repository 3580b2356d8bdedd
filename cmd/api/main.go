package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"civicsolve/internal/adapter/api"
	"civicsolve/internal/adapter/api/handler"
	apimiddleware "civicsolve/internal/adapter/api/middleware"
	"civicsolve/internal/adapter/api/router"
	"civicsolve/internal/adapter/repository"
	"civicsolve/internal/domain/entity"
	domainrepo "civicsolve/internal/domain/repository"
	"civicsolve/internal/domain/service"
	"civicsolve/internal/infrastructure/firebase"
	"civicsolve/internal/infrastructure/metrics"
	"civicsolve/internal/infrastructure/mongodb"
	"civicsolve/internal/infrastructure/notification"
	"civicsolve/internal/infrastructure/ratelimit"
	"civicsolve/internal/infrastructure/reliability/circuitbreaker"
	"civicsolve/internal/infrastructure/storage"
	"civicsolve/internal/infrastructure/telegram"
	"civicsolve/internal/infrastructure/tracing"
	"civicsolve/internal/infrastructure/websocket"
	"civicsolve/internal/usecase"
	"civicsolve/pkg/config"
	"civicsolve/pkg/logger"
	"civicsolve/pkg/response"
)

const serviceName = "civicsolve-api"

type stores struct {
	complaints  domainrepo.ComplaintRepository
	users       domainrepo.UserRepository
	departments domainrepo.DepartmentRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.Environment)
	response.Configure(cfg.IsProduction())
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, serviceName, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	credentials := firebase.CredentialOption(cfg.FirebaseServiceAccountJSON, cfg.FirebaseServiceAccountPath)

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.close()

	breaker := circuitbreaker.New(cfg.BreakerFailures, 2, cfg.BreakerCooldown)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		log.WithField("from", from.String()).WithField("to", to.String()).Warn("Store circuit breaker changed state")
		metrics.SetStoreBreakerState(int(to))
	})
	guard := repository.NewStoreGuard(cfg.StoreTimeout, breaker)
	complaintRepo := repository.NewGuardedComplaintRepository(st.complaints, guard)
	userRepo := repository.NewGuardedUserRepository(st.users, guard)
	departmentRepo := repository.NewGuardedDepartmentRepository(st.departments, guard)

	var verifier apimiddleware.TokenVerifier
	var identity usecase.IdentityProvider
	if cfg.FirebaseProject != "" {
		_, authClient, err := firebase.NewApp(ctx, cfg.FirebaseProject, credentials...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
		verifier = firebaseAuthClient
		identity = firebaseAuthClient
	} else {
		if cfg.IsProduction() {
			log.Fatal("FIREBASE_PROJECT_ID is required in production")
		}
		log.Warn("Firebase is not configured, accepting development tokens")
		verifier = firebase.NewDevTokenVerifier()
	}

	var files service.FileUploadService
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentials...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		files = storageClient
	} else {
		log.Warn("STORAGE_BUCKET is not set, media is kept in memory")
		files = storage.NewMemoryFileStore()
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	sinks := []service.Sink{notification.NewWebsocketSink(wsManager)}
	if cfg.SMTPHost != "" {
		mailer := notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		sinks = append(sinks, notification.NewEmailSink(mailer, cfg.SMTPFrom, cfg.AdminEmail))
	}
	deliverer := notification.NewDeliverer(nil, sinks...)

	// Workers outlive the request context so queued events drain during shutdown.
	var dispatcher service.Dispatcher
	if cfg.RedisURL != "" {
		rdb, err := notification.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		redisDispatcher := notification.NewRedisDispatcher(rdb, cfg.NotifyQueue, deliverer)
		redisDispatcher.Start(context.Background(), 4)
		defer redisDispatcher.Close()
		dispatcher = redisDispatcher
	} else {
		asyncDispatcher := notification.NewAsyncDispatcher(deliverer, 256)
		asyncDispatcher.Start(context.Background(), 4)
		defer asyncDispatcher.Close()
		dispatcher = asyncDispatcher
	}

	statsUseCase := usecase.NewStatsUseCase(complaintRepo)
	departmentUseCase := usecase.NewDepartmentUseCase(departmentRepo)
	mediaUseCase := usecase.NewMediaUseCase(files)

	policy := usecase.ComplaintPolicy{}
	if cfg.DepartmentRouting {
		policy.Router = usecase.NewKeywordRouter()
	}
	if cfg.AnonymousReporting {
		anonymous, err := usecase.NewUserUseCase(userRepo, nil, nil, identity).EnsureUser(ctx, &entity.User{
			Name:      cfg.AnonymousUser.Name,
			Email:     cfg.AnonymousUser.Email,
			Phone:     cfg.AnonymousUser.Phone,
			CitizenID: cfg.AnonymousUser.CitizenID,
			Location:  cfg.AnonymousUser.Location,
		})
		if err != nil {
			log.Fatalf("Failed to prepare anonymous reporter: %v", err)
		}
		policy.AnonymousUserID = anonymous.ID
		log.WithField("user_id", anonymous.ID).Info("Anonymous reporting enabled")
	}

	complaintUseCase := usecase.NewComplaintUseCase(complaintRepo, userRepo, departmentRepo, dispatcher, policy)
	userUseCase := usecase.NewUserUseCase(userRepo, complaintUseCase, statsUseCase, identity)
	lifecycleUseCase := usecase.NewLifecycleUseCase(complaintRepo, complaintUseCase, dispatcher, cfg.StrictTransitions)

	handler.Setup(complaintUseCase, lifecycleUseCase, statsUseCase, userUseCase, departmentUseCase, mediaUseCase, complaintRepo, wsManager)

	limiter := ratelimit.NewRateLimiter(ratelimit.PerMinute(120))
	limiter.SetPolicy(router.ActionUpvote, ratelimit.PerMinute(cfg.UpvoteRatePerMin))
	limiter.SetPolicy(router.ActionEscalate, ratelimit.PerMinute(cfg.UpvoteRatePerMin))
	limiter.StartCleanupRoutine(ctx.Done())

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewAssistantBot(cfg.TelegramBotToken)
		if err != nil {
			log.Errorf("Failed to start Telegram assistant: %v", err)
		} else {
			go bot.Run(ctx)
		}
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())
	e.Use(tracing.Middleware(serviceName))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)
	router.Setup(e, authMiddleware, adminMiddleware, limiter)

	go func() {
		log.Infof("Starting server on port %s (store: %s)", cfg.ServerPort, cfg.StoreDriver)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject,
			firebase.CredentialOption(cfg.FirebaseServiceAccountJSON, cfg.FirebaseServiceAccountPath)...)
		if err != nil {
			return nil, err
		}
		return &stores{
			complaints:  repository.NewFirestoreComplaintRepository(client),
			users:       repository.NewFirestoreUserRepository(client),
			departments: repository.NewFirestoreDepartmentRepository(client),
			close:       func() { client.Close() },
		}, nil

	case "mongo":
		client, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to ensure MongoDB indexes: %v", err)
		}
		db := client.Database()
		return &stores{
			complaints:  repository.NewMongoComplaintRepository(db),
			users:       repository.NewMongoUserRepository(db),
			departments: repository.NewMongoDepartmentRepository(db),
			close:       func() { client.Close(context.Background()) },
		}, nil

	default:
		logger.Warn("Using in-memory store; data is lost on restart")
		return &stores{
			complaints:  repository.NewMemoryComplaintRepository(),
			users:       repository.NewMemoryUserRepository(),
			departments: repository.NewMemoryDepartmentRepository(),
			close:       func() {},
		}, nil
	}
}
