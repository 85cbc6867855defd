// Package constants holds configuration values shared across layers.
package constants

const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub providers
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Lock drivers
const (
	LockDriverLocal = "local"
	LockDriverRedis = "redis"
)

// Channel drivers
const (
	ChannelDriverLog  = "log"
	ChannelDriverHTTP = "http"
)
