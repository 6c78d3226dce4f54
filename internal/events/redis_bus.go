package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisBus relays events between API instances over Redis pub/sub so
// every instance's socket hub sees every shop's events.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

func NewRedisBus(ctx context.Context, opts RedisOptions, log *zap.Logger) (*RedisBus, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis bus: missing address")
	}
	if opts.Channel == "" {
		opts.Channel = "trimbook.events"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBus{
		rdb:     rdb,
		channel: opts.Channel,
		log:     log.With(zap.String("component", "redis_bus")),
	}, nil
}

func (b *RedisBus) Handle(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and hands each event to onEvent
// until ctx is cancelled.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return errors.New("redis bus: onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad event payload", zap.Error(err))
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

func (b *RedisBus) Close() error {
	return b.rdb.Close()
}

var _ Sink = (*RedisBus)(nil)
