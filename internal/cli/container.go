package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/duplicate"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/geo"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/priority"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/sla"
	"github.com/spec-kit/complaint-service/internal/worker"
)

// container holds the wired object graph shared by the commands.
type container struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics

	postgres *persistence.Postgres
	redis    *persistence.Redis
	producer *events.KafkaProducer

	users      repository.UserRepository
	complaints *service.ComplaintService
	reports    *service.ReportService
	auth       *service.AuthService
	monitor    *worker.EscalationMonitor
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

func newContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*container, error) {
	c := &container{cfg: cfg, logger: logger, metrics: observability.NewMetrics()}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	c.postgres = pg
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	c.redis = persistence.NewRedis(ctx, cfg.Redis, logger)

	var complaintRepo repository.ComplaintRepository
	if pg.Enabled() {
		complaintRepo = repository.NewComplaintRepository(pg.PoolHandle())
		c.users = repository.NewUserRepository(pg.PoolHandle())
	} else {
		complaintRepo = repository.NewMemoryComplaintRepository()
		c.users = repository.NewMemoryUserRepository()
	}

	var index geo.Index = geo.NewMemoryIndex()
	if c.redis.Enabled() {
		index = geo.NewRedisIndex(c.redis.Client, cfg.Redis.GeoKeyPrefix)
	}

	bands := priority.TableByName(cfg.Engine.PriorityBanding)
	policy := sla.DefaultPolicy()
	if cfg.Engine.SLAFloorHours > 0 {
		policy.Floor = time.Duration(cfg.Engine.SLAFloorHours) * time.Hour
	}
	if cfg.Engine.SLACeilingHours > 0 {
		policy.Ceiling = time.Duration(cfg.Engine.SLACeilingHours) * time.Hour
	}

	detector := duplicate.NewDetector(index, complaintRepo, duplicate.Config{
		RadiusMeters:  cfg.Engine.DuplicateRadiusMeters,
		Window:        cfg.Engine.DuplicateWindow(),
		MaxCandidates: cfg.Engine.DuplicateMaxCandidates,
	}, logger.Named("duplicate"))

	dispatcher := events.NewInMemoryDispatcher(logger.Named("events"))
	c.producer = events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Named("kafka"))
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, c.producer, logger.Named("notify"), cfg.Notify))

	c.complaints = service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		Index:         index,
		Detector:      detector,
		Scorer:        priority.NewScorer(priority.DefaultWeights()),
		Bands:         bands,
		Scheduler:     sla.NewScheduler(policy),
		Classifier:    service.KeywordClassifier{},
		Dispatcher:    dispatcher,
		Metrics:       c.metrics,
		Logger:        logger.Named("complaints"),
		Policy: service.EscalationPolicy{
			Grace:      cfg.Escalation.Grace(),
			MaxOpenAge: cfg.Escalation.MaxOpenAge(),
			OnRead:     cfg.Escalation.OnRead,
		},
	})
	c.reports = service.NewReportService(complaintRepo, bands, nil)
	c.auth = service.NewAuthService(cfg.Auth, c.users, logger.Named("auth"))
	c.monitor = worker.NewEscalationMonitor(c.complaints, cfg.Escalation.Interval(), cfg.Escalation.BatchSize, logger.Named("escalation"), c.metrics)
	return c, nil
}

func (c *container) Close() {
	if err := c.producer.Close(); err != nil {
		c.logger.Warn("kafka producer close", zap.Error(err))
	}
	c.redis.Close()
	c.postgres.Close()
}
