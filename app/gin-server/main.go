package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/yoockh/careercoach/config"
	"github.com/yoockh/careercoach/internal/api/handlers"
	"github.com/yoockh/careercoach/internal/api/middleware"
	"github.com/yoockh/careercoach/internal/api/routes"
	"github.com/yoockh/careercoach/internal/cache"
	"github.com/yoockh/careercoach/internal/catalog"
	"github.com/yoockh/careercoach/internal/events"
	"github.com/yoockh/careercoach/internal/interview"
	"github.com/yoockh/careercoach/internal/logger"
	"github.com/yoockh/careercoach/internal/providers/llm"
	"github.com/yoockh/careercoach/internal/providers/stt"
	"github.com/yoockh/careercoach/internal/reporting"
	mongorepo "github.com/yoockh/careercoach/internal/repositories/mongo"
	pgrepo "github.com/yoockh/careercoach/internal/repositories/postgres"
	"github.com/yoockh/careercoach/internal/services"
	"github.com/yoockh/careercoach/internal/speech"
	"github.com/yoockh/careercoach/internal/storage"
	"github.com/yoockh/careercoach/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	cfg := config.LoadApp()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Warn("MongoDB index setup failed")
	}
	log.Info("MongoDB connected")

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	if err := config.MigratePostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL migration error")
	}
	log.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	var gopts []option.ClientOption
	if cfg.GCP.CredentialsFile != "" {
		gopts = append(gopts, option.WithCredentialsFile(cfg.GCP.CredentialsFile))
	}

	gemini, err := llm.NewVertexGemini(ctx, cfg.GCP.ProjectID, cfg.GCP.Location, cfg.GCP.Model, gopts...)
	if err != nil {
		log.WithError(err).Fatal("Vertex AI init error")
	}
	defer gemini.Close()
	model := llm.NewBreaker(gemini, llm.DefaultBreakerConfig(), log)

	// nil recognizer means voice answers report UNSUPPORTED_ENVIRONMENT
	var recognizer speech.Recognizer
	if cfg.Speech.Enabled {
		gs, err := stt.NewGoogleSpeech(ctx, gopts...)
		if err != nil {
			log.WithError(err).Warn("speech recognition unavailable")
		} else {
			gs.SampleRateHz = cfg.Speech.SampleRateHz
			defer gs.Close()
			recognizer = gs
		}
	}

	var uploader storage.Uploader
	if cfg.GCP.Bucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.GCP.Bucket, gopts...)
		if err != nil {
			log.WithError(err).Warn("resume archive disabled")
		} else {
			defer gcs.Close()
			uploader = gcs
		}
	}

	professions, err := catalog.Load(cfg.ProfessionsFile)
	if err != nil {
		log.WithError(err).Fatal("profession catalog error")
	}

	hub := reporting.NewHub(log)
	failures := reporting.NewRecent(50)
	failures.Follow(ctx, hub)

	questionSvc := services.NewQuestionService(model)
	feedbackSvc := services.NewFeedbackService(model)
	techSvc := services.NewTechQuestionService(model)
	skillGapSvc := services.NewSkillGapService(model, pgrepo.NewSkillGapRepo(config.PostgresDB))
	resumeSvc := services.NewResumeService(pgrepo.NewCVFileRepo(config.PostgresDB), uploader, hub)
	historySvc := services.NewHistoryService(
		mongorepo.NewHistoryRepo(config.MongoDatabase()),
		cache.NewRedisCache(config.RedisClient),
		log,
	)

	pool := &workers.HistoryWorkerPool{
		Redis:      config.RedisClient,
		History:    historySvc,
		Reporter:   hub,
		NumWorkers: cfg.HistoryWorkers,
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		log.WithError(err).Fatal("history workers failed to start")
	}
	queue := &workers.HistoryQueue{Redis: config.RedisClient}

	states := events.NewStatePublisher(config.RedisClient, log)

	registry := interview.NewRegistry(func(id, userID string, opts interview.Options) *interview.Orchestrator {
		return interview.New(id, opts,
			interview.Collaborators{UserID: userID, History: queue},
			interview.Env{
				Questions:   questionSvc,
				Feedback:    feedbackSvc,
				Professions: professions,
				Reporter:    hub,
				Logger:      log,
				OnChange:    states.Observer(),
			},
		)
	})
	go sweepSessions(ctx, registry, cfg.SessionIdleTTL, log)

	speechOpts := speech.Options{
		Language:               cfg.Speech.Language,
		DiscardOnUnexpectedEnd: cfg.DiscardOnUnexpectedEnd,
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log, "/ping"))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:      middleware.JWTConfigFromEnv(),
		Catalog:       handlers.NewCatalogHandler(professions),
		Interview:     handlers.NewInterviewHandler(registry),
		Resume:        handlers.NewResumeHandler(registry, resumeSvc, cfg.ResumeMaxBytes),
		History:       handlers.NewHistoryHandler(historySvc),
		SkillGap:      handlers.NewSkillGapHandler(skillGapSvc),
		TechQuestions: handlers.NewTechQuestionHandler(techSvc),
		Admin:         handlers.NewAdminHandler(model, registry, failures),
		WS:            handlers.NewWSHandler(registry, recognizer, states, speechOpts, cfg.CORSOrigins, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	_ = config.MongoClient.Disconnect(shutdownCtx)
	_ = config.RedisClient.Close()
}

func sweepSessions(ctx context.Context, reg *interview.Registry, maxIdle time.Duration, log *logrus.Logger) {
	if maxIdle <= 0 {
		return
	}
	t := time.NewTicker(maxIdle / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := reg.Sweep(maxIdle); n > 0 {
				log.WithField("removed", n).Info("idle interview sessions removed")
			}
		}
	}
}
