package container

import (
	"context"
	"fmt"

	"evote/internal/config"
	"evote/internal/handler"
	"evote/internal/notifier"
	"evote/internal/repository"
	"evote/internal/service"
	"evote/internal/service/auth"
	"evote/pkg/database"
	"evote/pkg/logger"
	"evote/pkg/mail"
	"evote/pkg/redis"
)

// Container wires configuration, infrastructure, repositories, services
// and handlers together.
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	DB    *database.PostgresDB
	Redis *redis.Client

	VoterRepo     repository.VoterRepository
	BallotRepo    repository.BallotRepository
	CandidateRepo repository.CandidateRepository
	ElectionRepo  repository.ElectionRepository

	AuthService     service.AuthService
	VotingService   service.VotingService
	TallyService    service.TallyService
	ElectionService service.ElectionService
	Hub             *notifier.Hub

	AuthHandler   *handler.AuthHandler
	VotingHandler *handler.VotingHandler
	EventsHandler *handler.EventsHandler
	HealthHandler *handler.HealthHandler
}

// New builds the full dependency graph. Redis is optional: with an empty
// REDIS_URL the app runs without caching and with in-process fan-out only.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	} else {
		log.Warn("REDIS_URL not set, running without cache and cross-process fan-out")
	}

	mailer := mail.NewMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, log.Logger)

	voterRepo := repository.NewVoterRepository(db)
	ballotRepo := repository.NewBallotRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	electionRepo := repository.NewElectionRepository(db)

	hub := notifier.NewHub(redisClient, log.Logger)

	tallyService := service.NewTallyService(ballotRepo, redisClient, log.Logger)
	electionService := service.NewElectionService(electionRepo, log.Logger)
	votingService := service.NewVotingService(
		voterRepo, ballotRepo, electionRepo,
		tallyService, hub, redisClient, log.Logger,
	)
	authService := auth.NewService(
		voterRepo, ballotRepo, mailer,
		cfg.JWTSecret, cfg.JWTExpiryHours, cfg.ClientURL, log,
	)

	return &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  redisClient,

		VoterRepo:     voterRepo,
		BallotRepo:    ballotRepo,
		CandidateRepo: candidateRepo,
		ElectionRepo:  electionRepo,

		AuthService:     authService,
		VotingService:   votingService,
		TallyService:    tallyService,
		ElectionService: electionService,
		Hub:             hub,

		AuthHandler:   handler.NewAuthHandler(authService, log),
		VotingHandler: handler.NewVotingHandler(votingService, tallyService, electionService, candidateRepo, redisClient, log),
		EventsHandler: handler.NewEventsHandler(hub, log),
		HealthHandler: handler.NewHealthHandler(db, redisClient, log),
	}, nil
}

// Close releases infrastructure resources in reverse dependency order.
func (c *Container) Close(ctx context.Context) {
	if c.Hub != nil {
		if err := c.Hub.Stop(ctx); err != nil {
			c.Logger.WithError(err).Error("Failed to stop notifier hub")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.WithError(err).Error("Failed to close redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
