package repositories

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vidgate/internal/core/ports"
	"vidgate/internal/infrastructure/repositories/jsonfile"
	"vidgate/internal/infrastructure/repositories/memory"
	redisrepo "vidgate/internal/infrastructure/repositories/redis"
	"vidgate/pkg/config"
)

// RepositoryFactory wires the storage backends. The three documents are
// always JSON files (that is the compatibility contract); only the
// transient session state can live in Redis, falling back to memory when
// Redis is unavailable.
type RepositoryFactory struct {
	store       *jsonfile.Store
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	store := jsonfile.NewStore(
		cfg.Storage.UsersFile,
		cfg.Storage.VideosFile,
		cfg.Storage.ChannelsFile,
		logger,
	)
	if err := store.Init(); err != nil {
		return nil, err
	}

	factory := &RepositoryFactory{
		store:    store,
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory sessions",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis session repository")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory session repository")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	return jsonfile.NewUserRepository(f.store)
}

func (f *RepositoryFactory) CreateVideoRepository() ports.VideoRepository {
	return jsonfile.NewVideoRepository(f.store)
}

func (f *RepositoryFactory) CreateChannelRepository() ports.ChannelRepository {
	return jsonfile.NewChannelRepository(f.store)
}

func (f *RepositoryFactory) CreateSessionRepository() ports.SessionRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewSessionRepository(f.redisClient)
	}
	return memory.NewSessionRepository()
}

// Close closes the Redis connection if one is in use.
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck verifies the Redis connection when sessions live there.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
