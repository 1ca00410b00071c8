// Package component wires concrete Blackboard/Broker/Storage backends
// from environment configuration, grounded on the teacher's
// internal/component factory (GetCache/GetQueue/GetStorage switching on a
// string key).
package component

import (
	"fmt"

	"github.com/reactome/gsa-orchestrator/internal/blackboard"
	bbfreecache "github.com/reactome/gsa-orchestrator/internal/blackboard/freecache"
	bbredis "github.com/reactome/gsa-orchestrator/internal/blackboard/redis"
	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/broker/jetstream"
	"github.com/reactome/gsa-orchestrator/internal/config"
	"github.com/reactome/gsa-orchestrator/internal/storage"
	"github.com/reactome/gsa-orchestrator/internal/storage/minio"
)

// GetBlackboard constructs the Blackboard backend named by cacheType
// ("redis" or "freecache").
func GetBlackboard(cacheType string) (blackboard.Blackboard, error) {
	switch cacheType {
	case "redis":
		cfg, err := config.GetRedisConfig()
		if err != nil {
			return nil, err
		}
		return bbredis.New(cfg), nil
	case "freecache":
		cfg, err := config.GetFreeCacheConfig()
		if err != nil {
			return nil, err
		}
		return bbfreecache.New(cfg), nil
	default:
		return nil, fmt.Errorf("component: unknown blackboard type %q", cacheType)
	}
}

// GetBroker constructs the Broker backend named by queueType ("nats" is
// the only supported value today).
func GetBroker(queueType string) (broker.Broker, error) {
	switch queueType {
	case "nats":
		natsCfg, err := config.GetNatsConfig()
		if err != nil {
			return nil, err
		}
		queueCfg, err := config.GetNatsQueueConfig()
		if err != nil {
			return nil, err
		}
		return jetstream.New(natsCfg, queueCfg)
	default:
		return nil, fmt.Errorf("component: unknown broker type %q", queueType)
	}
}

// GetStorage constructs the Storage backend named by storageType ("minio"
// is the only supported value today).
func GetStorage(storageType string) (storage.Storage, error) {
	switch storageType {
	case "minio":
		cfg, err := config.GetMinioConfig()
		if err != nil {
			return nil, err
		}
		return minio.New(cfg)
	default:
		return nil, fmt.Errorf("component: unknown storage type %q", storageType)
	}
}

// Components bundles every backend one process needs, mirroring the
// teacher's Components struct returned from GetNewComponents.
type Components struct {
	Blackboard blackboard.Blackboard
	Broker     broker.Broker
	Storage    storage.Storage
}

// New wires all three backends from cfg.
func New(cfg *config.Config) (*Components, error) {
	bb, err := GetBlackboard(cfg.CACHE_TYPE)
	if err != nil {
		return nil, err
	}
	br, err := GetBroker(cfg.QUEUE_TYPE)
	if err != nil {
		return nil, err
	}
	st, err := GetStorage(cfg.STORAGE_TYPE)
	if err != nil {
		return nil, err
	}
	return &Components{Blackboard: bb, Broker: br, Storage: st}, nil
}

// Close tears down every backend, logging nothing itself — callers decide
// how failures during shutdown are reported.
func (c *Components) Close() error {
	var firstErr error
	if err := c.Blackboard.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.Broker.Shutdown(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.Storage.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
