// Package config reads process configuration from the environment,
// following the teacher's convention: one typed Get*Config function per
// concern, fatal (returned as an error, not a panic) on any missing or
// malformed required key.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// NatsConfig configures the JetStream connection used by the Broker.
type NatsConfig struct {
	URL string
}

// NatsQueueConfig bounds the three JetStream work queues.
type NatsQueueConfig struct {
	MaxQueueLength  int
	MaxMessageTries int
	AckWaitSeconds  int
	MaxDeliver      int
}

// RedisConfig configures the primary Blackboard backend.
type RedisConfig struct {
	URL            string
	ClientPassword string
}

// RedisCacheConfig bounds TTLs applied by the Redis Blackboard backend.
type RedisCacheConfig struct {
	StatusTTLSeconds  int
	ResultTTLSeconds  int
	DatasetTTLSeconds int
}

// FreeCacheConfig configures the in-process Blackboard backend used by
// tests and single-process demos.
type FreeCacheConfig struct {
	SIZE_BYTES int
	TTL        int
}

// MinioConfig configures the object-storage backend used for large
// Blackboard blobs (results, report artifacts).
type MinioConfig struct {
	URL         string
	JOBS_BUCKET string
	ACCESS_KEY  string
	SECRET_KEY  string
	USE_SSL     bool
}

// TimeoutConfig bounds the liveness watchdogs described in SPEC_FULL.md
// §5 ("Cancellation & timeouts").
type TimeoutConfig struct {
	MaxWorkerTimeoutSeconds    int
	LoadingMaxTimeoutSeconds   int
	ProgressUpdateMinIntervalMS int
}

// NotifyConfig configures the operator-failure notification described in
// spec.md §7. ErrorMailAddress is optional: callers that find it empty
// should skip sending rather than fail.
type NotifyConfig struct {
	ErrorMailAddress string
}

// Config holds the process-identity and backend-selection settings common
// to every role.
type Config struct {
	SERVICE_NAME    string
	TRACE_URL       string
	CACHE_TYPE      string
	QUEUE_TYPE      string
	STORAGE_TYPE    string
	HTTP_ADDR       string
	ADMISSION_QUEUE_CAPACITY int
}

func env(key string) string {
	return os.Getenv(key)
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func convertStringToInt(s string, key string) (int, error) {
	sInt, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("error initializing config with key: %s, err: %v", key, err)
	}
	return sInt, nil
}

func GetNatsConfig() (*NatsConfig, error) {
	url := env("JETSTREAM_URL")
	if url == "" {
		return nil, fmt.Errorf("KEY: JETSTREAM_URL is empty")
	}
	return &NatsConfig{URL: url}, nil
}

func GetNatsQueueConfig() (*NatsQueueConfig, error) {
	maxLen, err := convertStringToInt(envDefault("RABBIT_MAX_QUEUE_LENGTH", "1000"), "RABBIT_MAX_QUEUE_LENGTH")
	if err != nil {
		return nil, err
	}
	maxTries, err := convertStringToInt(envDefault("MAX_MESSAGE_TRIES", "3"), "MAX_MESSAGE_TRIES")
	if err != nil {
		return nil, err
	}
	ackWait, err := convertStringToInt(envDefault("BROKER_ACK_WAIT_SECONDS", "20"), "BROKER_ACK_WAIT_SECONDS")
	if err != nil {
		return nil, err
	}
	maxDeliver, err := convertStringToInt(envDefault("BROKER_MAX_DELIVER", "5"), "BROKER_MAX_DELIVER")
	if err != nil {
		return nil, err
	}
	return &NatsQueueConfig{
		MaxQueueLength:  maxLen,
		MaxMessageTries: maxTries,
		AckWaitSeconds:  ackWait,
		MaxDeliver:      maxDeliver,
	}, nil
}

func GetRedisConfig() (*RedisConfig, error) {
	url := env("REDIS_ENDPOINT")
	if url == "" {
		return nil, fmt.Errorf("KEY: REDIS_ENDPOINT is empty")
	}
	return &RedisConfig{
		ClientPassword: env("REDIS_CLIENT_PASSWORD"),
		URL:            url,
	}, nil
}

func GetRedisCacheConfig() (*RedisCacheConfig, error) {
	statusTTL, err := convertStringToInt(envDefault("STATUS_TTL_SECONDS", "86400"), "STATUS_TTL_SECONDS")
	if err != nil {
		return nil, err
	}
	resultTTL, err := convertStringToInt(envDefault("RESULT_TTL_SECONDS", "604800"), "RESULT_TTL_SECONDS")
	if err != nil {
		return nil, err
	}
	datasetTTL, err := convertStringToInt(envDefault("DATASET_TTL_SECONDS", "3600"), "DATASET_TTL_SECONDS")
	if err != nil {
		return nil, err
	}
	return &RedisCacheConfig{
		StatusTTLSeconds:  statusTTL,
		ResultTTLSeconds:  resultTTL,
		DatasetTTLSeconds: datasetTTL,
	}, nil
}

func GetFreeCacheConfig() (*FreeCacheConfig, error) {
	ttl, err := convertStringToInt(envDefault("FREECACHE_TTL", "3600"), "FREECACHE_TTL")
	if err != nil {
		return nil, err
	}
	fs, err := convertStringToInt(envDefault("FREECACHE_SIZE", "104857600"), "FREECACHE_SIZE")
	if err != nil {
		return nil, err
	}
	return &FreeCacheConfig{
		TTL:        ttl,
		SIZE_BYTES: fs,
	}, nil
}

func GetMinioConfig() (*MinioConfig, error) {
	url := env("MINIO_ENDPOINT")
	if url == "" {
		return nil, fmt.Errorf("KEY: MINIO_ENDPOINT is empty")
	}

	jb := env("MINIO_JOBS_BUCKET")
	if jb == "" {
		return nil, fmt.Errorf("KEY: MINIO_JOBS_BUCKET is empty")
	}

	ssl := env("MINIO_USE_SSL")
	if ssl != "true" && ssl != "false" {
		return nil, fmt.Errorf("KEY: MINIO_USE_SSL is invalid")
	}

	ak := env("MINIO_ACCESS_KEY")
	if ak == "" {
		return nil, fmt.Errorf("KEY: MINIO_ACCESS_KEY is empty")
	}

	sk := env("MINIO_SECRET_KEY")
	if sk == "" {
		return nil, fmt.Errorf("KEY: MINIO_SECRET_KEY is empty")
	}

	return &MinioConfig{
		URL:         url,
		JOBS_BUCKET: jb,
		USE_SSL:     ssl == "true",
		ACCESS_KEY:  ak,
		SECRET_KEY:  sk,
	}, nil
}

func GetTimeoutConfig() (*TimeoutConfig, error) {
	workerTimeout, err := convertStringToInt(envDefault("MAX_WORKER_TIMEOUT", "60"), "MAX_WORKER_TIMEOUT")
	if err != nil {
		return nil, err
	}
	loadingTimeout, err := convertStringToInt(envDefault("LOADING_MAX_TIMEOUT", "300"), "LOADING_MAX_TIMEOUT")
	if err != nil {
		return nil, err
	}
	progressInterval, err := convertStringToInt(envDefault("PROGRESS_UPDATE_MIN_INTERVAL_MS", "1000"), "PROGRESS_UPDATE_MIN_INTERVAL_MS")
	if err != nil {
		return nil, err
	}
	return &TimeoutConfig{
		MaxWorkerTimeoutSeconds:     workerTimeout,
		LoadingMaxTimeoutSeconds:    loadingTimeout,
		ProgressUpdateMinIntervalMS: progressInterval,
	}, nil
}

func GetNotifyConfig() (*NotifyConfig, error) {
	return &NotifyConfig{ErrorMailAddress: env("MAIL_ERROR_ADDRESS")}, nil
}

func GetConfig() (*Config, error) {
	sn := env("SERVICE_NAME")
	if sn == "" {
		return nil, fmt.Errorf("KEY: SERVICE_NAME is empty")
	}
	ct := env("CACHE_TYPE")
	if ct == "" {
		return nil, fmt.Errorf("KEY: CACHE_TYPE is empty")
	}
	qt := env("QUEUE_TYPE")
	if qt == "" {
		return nil, fmt.Errorf("KEY: QUEUE_TYPE is empty")
	}
	st := env("STORAGE_TYPE")
	if st == "" {
		return nil, fmt.Errorf("KEY: STORAGE_TYPE is empty")
	}
	admissionCap, err := convertStringToInt(envDefault("ADMISSION_QUEUE_CAPACITY", "64"), "ADMISSION_QUEUE_CAPACITY")
	if err != nil {
		return nil, err
	}
	return &Config{
		SERVICE_NAME:             sn,
		TRACE_URL:                env("TRACE_URL"),
		CACHE_TYPE:               ct,
		QUEUE_TYPE:               qt,
		STORAGE_TYPE:             st,
		HTTP_ADDR:                envDefault("HTTP_ADDR", ":8080"),
		ADMISSION_QUEUE_CAPACITY: admissionCap,
	}, nil
}
