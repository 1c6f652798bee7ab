package api

import (
	"context"
	"fmt"

	"civic-engagement/missionhub/internal/auth"
	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/jobs"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/providers"
	"civic-engagement/missionhub/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	gormlib "gorm.io/gorm"
)

const memoryImportQueueSize = 100

type Repositories struct {
	Missions      *repositories.MissionRepo
	Publishers    *repositories.PublisherRepo
	Imports       *repositories.ImportRepo
	History       *repositories.HistoryRepo
	Moderations   *repositories.ModerationRepo
	Organizations *repositories.OrganizationRepo
	NameMatches   *repositories.NameMatchRepo
	// nil when the analytics mirror is disabled
	Analytics *repositories.AnalyticsRepo
}

type Services struct {
	Cache        common.CacheInterface
	Builder      *services.MissionBuilder
	Geolocation  *services.GeolocationService
	Resolver     *services.OrganizationResolver
	Synchronizer *services.Synchronizer
	Mirror       *services.MirrorService
	Moderator    *services.ModeratorService
	Registry     *services.RegistryService
	Tokens       *auth.TokenService
}

type Jobs struct {
	Import     *jobs.ImportJob
	Moderation *jobs.ModerationJob
	Registry   *jobs.RegistryIngestJob
}

type Dependencies struct {
	Config   *config.Config
	Primary  *gormlib.DB
	Repo     *Repositories
	Services *Services
	Jobs     *Jobs
	Queue    common.ImportQueue
	Metrics  *metrics.MetricsRegistry
	redis    *redis.Client
}

// InitDependencies wires repositories, providers, services and jobs. analytics may be
// nil, which disables the mirror.
func InitDependencies(cfg *config.Config, primary *gormlib.DB, analytics *sqlx.DB, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	rules, err := config.LoadTextRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load text rules: %w", err)
	}

	repos := &Repositories{
		Missions:      repositories.NewMissionRepo(primary),
		Publishers:    repositories.NewPublisherRepo(primary),
		Imports:       repositories.NewImportRepo(primary),
		History:       repositories.NewHistoryRepo(primary),
		Moderations:   repositories.NewModerationRepo(primary),
		Organizations: repositories.NewOrganizationRepo(primary),
		NameMatches:   repositories.NewNameMatchRepo(primary),
	}
	if analytics != nil {
		repos.Analytics = repositories.NewAnalyticsRepo(analytics)
	}

	deps := &Dependencies{
		Config:  cfg,
		Primary: primary,
		Repo:    repos,
		Metrics: metricsReg,
	}

	// One Redis client backs both the grants cache and the import queue
	var cache common.CacheInterface
	if cfg.RedisAddr != "" {
		deps.redis = common.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		cache = common.NewRedisCacheService(deps.redis, "missionhub:")
		deps.Queue = common.NewRedisImportQueue(deps.redis)
	} else {
		cache = common.NewCache("", "")
		deps.Queue = common.NewMemoryImportQueue(memoryImportQueueSize)
	}

	grants := providers.NewGrantsProvider(
		cfg.GrantsURL,
		cfg.GrantsToken,
		common.NewThrottle(cfg.GrantsRate, 1),
		cache,
		cfg.GrantsCacheTTL,
		metricsReg,
	)

	svc := &Services{
		Cache:        cache,
		Builder:      services.NewMissionBuilder(rules, cfg.IsExempt),
		Geolocation:  services.NewGeolocationService(providers.NewGeocoderProvider(cfg.GeocoderURL, metricsReg)),
		Resolver:     services.NewOrganizationResolver(repos.Organizations, repos.NameMatches, grants),
		Synchronizer: services.NewSynchronizer(repos.Missions, repos.History, cfg.TrackedModeratorID),
		Moderator:    services.NewModeratorService(repos.Missions, repos.Moderations, repos.History, cfg.TrackedModeratorID),
		Registry:     services.NewRegistryService(providers.NewRegistryProvider(metricsReg), repos.Organizations),
		Tokens:       auth.NewTokenService([]byte(cfg.JWTSecret)),
	}
	if repos.Analytics != nil {
		svc.Mirror = services.NewMirrorService(repos.Missions, repos.Organizations, repos.Publishers,
			repos.Moderations, repos.Analytics, metricsReg)
	} else {
		logging.Info("Analytics mirror disabled")
	}
	deps.Services = svc

	deps.Jobs = &Jobs{
		Import: jobs.NewImportJob(
			repos.Publishers,
			repos.Imports,
			repos.Missions,
			providers.NewFeedProvider(metricsReg),
			svc.Builder,
			svc.Geolocation,
			svc.Resolver,
			svc.Synchronizer,
			svc.Mirror,
			metricsReg,
			jobs.ImportOptions{ChunkSize: cfg.ChunkSize, BuildConcurrency: cfg.BuildConcurrency},
		),
		Moderation: jobs.NewModerationJob(repos.Publishers, svc.Moderator, svc.Mirror),
		Registry:   jobs.NewRegistryIngestJob(svc.Registry, cfg.RegistryURL),
	}

	return deps, nil
}

// HealthProbes returns one probe per configured backing service
func (d *Dependencies) HealthProbes() map[string]HealthProbe {
	probes := map[string]HealthProbe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := d.Primary.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if d.Repo.Analytics != nil {
		probes["analytics"] = d.Repo.Analytics.Ping
	}
	if d.redis != nil {
		probes["redis"] = func(ctx context.Context) error {
			return d.redis.Ping(ctx).Err()
		}
	}
	return probes
}

// Close releases the cache and Redis connections
func (d *Dependencies) Close() error {
	if d.Services != nil && d.Services.Cache != nil {
		if err := d.Services.Cache.Close(); err != nil {
			return err
		}
	}
	return nil
}
