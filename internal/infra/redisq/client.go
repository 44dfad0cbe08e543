package redisq

import (
	"commerceq/internal/config"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Client struct {
	Cfg config.Redis
	Rdb *redis.Client
}

func New(cfg config.Redis) *Client {
	log.Info().Msgf("connecting to redis at %s", cfg.Addr)
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Client{Cfg: cfg, Rdb: c}
}

func (c *Client) streamKey(queue string) string {
	return c.Cfg.StreamPrefix + ":" + queue
}

func (c *Client) delayKey(queue string) string {
	return c.Cfg.StreamPrefix + ":delay:" + queue
}

func (c *Client) dlqKey(queue string) string {
	return c.Cfg.StreamPrefix + ":dlq:" + queue
}

func (c *Client) stateKey(id string) string {
	return c.Cfg.StreamPrefix + ":task:" + id
}

// Connect → used by API only
func (c *Client) Connect(ctx context.Context) error {
	if err := c.Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Ctx(ctx).Info().Msg("connected to redis")
	return nil
}

// Init → used by Worker, ensures one stream + consumer group per queue
func (c *Client) Init(ctx context.Context, queues []string) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	for _, q := range queues {
		err := c.Rdb.XGroupCreateMkStream(ctx, c.streamKey(q), c.Cfg.Group, "0").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP Consumer Group name already exists") {
			return fmt.Errorf("failed to create consumer group for %s: %w", q, err)
		}
	}

	log.Ctx(ctx).Info().
		Strs("queues", queues).
		Str("group", c.Cfg.Group).
		Msg("redis streams and consumer groups ready")

	return nil
}

func nowMs() float64 { return float64(time.Now().UnixMilli()) }
