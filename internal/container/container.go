package container

import (
	"context"
	"fmt"
	"time"

	"chatwoot/kbsync/internal/client"
	"chatwoot/kbsync/internal/config"
	"chatwoot/kbsync/internal/proxy"
	"chatwoot/kbsync/internal/queue"
	"chatwoot/kbsync/internal/repository"
	"chatwoot/kbsync/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     *client.ChatwootClient
	Repository repository.ArticleRepository
	Queue      *queue.RedisQueue

	Service *service.Service

	db *pgxpool.Pool
}

// Options selects the optional backends a command needs
type Options struct {
	WithQueue bool
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	container := &Container{
		Config:     cfg,
		Repository: repository.NewNoopArticleRepository(),
	}

	proxySupplier, err := proxy.NewProxySupplier(ctx, cfg.KnowledgeBase.Proxies, cfg.KnowledgeBase.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	container.Client = client.NewKnowledgeBaseClient(cfg.KnowledgeBase, proxySupplier)

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx,
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		container.db = db

		if err := repository.EnsureSchema(ctx, db); err != nil {
			container.Close()
			return nil, err
		}

		container.Repository = repository.NewArticleRepository(db)
		log.Info("✅ Article ledger connected")
	}

	// A nil interface, not a typed nil, when the queue is off.
	var articleQueue queue.Queue
	if opts.WithQueue {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			rdb.Close()
			container.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
		if err != nil {
			rdb.Close()
			container.Close()
			return nil, err
		}
		container.Queue = redisQueue
		articleQueue = redisQueue
	}

	container.Service = service.NewService(
		container.Client,
		container.Repository,
		articleQueue,
		service.Options{
			AuthorID:                cfg.KnowledgeBase.AuthorID,
			Locale:                  cfg.KnowledgeBase.Locale,
			ReuseExistingCategories: cfg.KnowledgeBase.ReuseExistingCategories,
			ConsumerGroup:           cfg.Redis.ConsumerGroup,
			Consumer:                cfg.Redis.Consumer,
			MinIdleTime:             time.Duration(cfg.Redis.MinIdleTime) * time.Second,
		},
	)

	return container, nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.Client != nil {
		if err := c.Client.Close(); err != nil {
			log.Warnf("⚠️ Failed to close HTTP client: %v", err)
		}
	}

	log.Debug("Container shut down")
	return nil
}
