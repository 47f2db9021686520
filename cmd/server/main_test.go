package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	redisRepo "github.com/iho/zionledger/internal/adapter/repository/redis"
	"github.com/iho/zionledger/internal/infrastructure/config"
	"github.com/iho/zionledger/internal/infrastructure/eventpublisher"
	"github.com/iho/zionledger/internal/infrastructure/metrics"
)

func TestNewPublisherWithoutRedisLogs(t *testing.T) {
	cfg := &config.Config{RedisStream: "s", RedisStreamMax: 10}

	p := newPublisher(cfg, nil, metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	if _, ok := p.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected LogPublisher, got %T", p)
	}
}

func TestNewPublisherWithRedisStreams(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := &config.Config{RedisStream: "s", RedisStreamMax: 10}

	p := newPublisher(cfg, client, metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	if _, ok := p.(*redisRepo.StreamPublisher); !ok {
		t.Fatalf("expected StreamPublisher, got %T", p)
	}
}

func TestRetryStartup(t *testing.T) {
	attempts := 0
	err := retryStartup(context.Background(), 2*time.Second, zerolog.Nop(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryStartupGivesUp(t *testing.T) {
	err := retryStartup(context.Background(), 300*time.Millisecond, zerolog.Nop(), func() error {
		return errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error after max elapsed time")
	}
}

func TestRunFailsOnUnknownDefaultBalance(t *testing.T) {
	cfg := &config.Config{DefaultBalanceName: "does_not_exist"}

	if err := run(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected startup to fail for unknown default balance")
	}
}

func TestRunFailsOnUnknownIsolation(t *testing.T) {
	cfg := &config.Config{DefaultBalanceName: "customer_facing_balance", DatabaseIsolation: "chaos"}

	if err := run(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected startup to fail for unknown isolation level")
	}
}
