package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "1MB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`

		// OpsAPIKey guards the /ops routes; they are not registered when empty
		OpsAPIKey string `json:"opsApiKey" yaml:"opsApiKey"`

		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Storage StorageConfig `json:"storage" yaml:"storage"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Attribution *AttributionConfig `json:"attribution" yaml:"attribution"`

	Notification *NotificationConfig `json:"notification" yaml:"notification"`

	Reminder *ReminderConfig `json:"reminder" yaml:"reminder"`

	// Channels configures the outbound email/SMS/WhatsApp relays
	Channels *ChannelsConfig `json:"channels" yaml:"channels"`

	// Documents configures the document generation collaborator
	Documents *DocumentsConfig `json:"documents" yaml:"documents"`

	// PubSub configuration for attribution lifecycle events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Lock configures the broadcast lease used to skip redundant concurrent work
	Lock *LockConfig `json:"lock" yaml:"lock"`

	// ResponseToken configures the signed accept/decline links sent to professionals
	ResponseToken *ResponseTokenConfig `json:"responseToken" yaml:"responseToken"`

	// QRCode configuration for the response link image attached to professional emails
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StorageConfig selects the persistence backend ("postgres" or "memory")
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"`

	// AutoMigrate creates the tables written by this service on startup
	AutoMigrate bool `json:"autoMigrate" yaml:"autoMigrate"`
}

// AttributionConfig defines matching and broadcast window settings
type AttributionConfig struct {
	DefaultRadiusKm float64 `json:"defaultRadiusKm" yaml:"defaultRadiusKm"`
	MaxRadiusKm     float64 `json:"maxRadiusKm" yaml:"maxRadiusKm"`

	// Upper bound of candidates returned by the matcher, 0 means unbounded
	MaxCandidates int `json:"maxCandidates" yaml:"maxCandidates"`

	// How long an attribution stays BROADCASTING before it expires
	BroadcastWindow time.Duration `json:"broadcastWindow" yaml:"broadcastWindow"`

	// Interval of the background sweep that expires stale attributions, 0 disables it
	ExpirySweepInterval time.Duration `json:"expirySweepInterval" yaml:"expirySweepInterval"`
}

// NotificationConfig defines fan-out and dispatch settings
type NotificationConfig struct {
	// Bound applied to every channel sender call
	SendTimeout time.Duration `json:"sendTimeout" yaml:"sendTimeout"`

	// Number of recipients dispatched concurrently
	FanOutWorkers int `json:"fanOutWorkers" yaml:"fanOutWorkers"`

	// Total attachment size allowed on a professional email
	MaxProfessionalAttachmentBytes int64 `json:"maxProfessionalAttachmentBytes" yaml:"maxProfessionalAttachmentBytes"`

	// Template of the professional broadcast email and WhatsApp message
	ProfessionalTemplate string `json:"professionalTemplate" yaml:"professionalTemplate"`
}

// ReminderOffset is one reminder type and how long before the service it fires
type ReminderOffset struct {
	Type   string        `json:"type" yaml:"type"`
	Before time.Duration `json:"before" yaml:"before"`
}

// ReminderConfig defines the offsets used by the reminder scheduler
type ReminderConfig struct {
	Offsets []ReminderOffset `json:"offsets" yaml:"offsets"`
}

// ChannelsConfig defines the outbound relay for each channel
type ChannelsConfig struct {
	// Driver: "log" writes messages to the logger, "http" posts them to the relays
	Driver   string        `json:"driver" yaml:"driver"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
	Email    RelayConfig   `json:"email" yaml:"email"`
	SMS      RelayConfig   `json:"sms" yaml:"sms"`
	WhatsApp RelayConfig   `json:"whatsapp" yaml:"whatsapp"`
}

// RelayConfig is an HTTP relay endpoint for one channel
type RelayConfig struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	APIKey   string `json:"apiKey" yaml:"apiKey"`
	Sender   string `json:"sender" yaml:"sender"`
}

// DocumentsConfig defines the document generation endpoint
type DocumentsConfig struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`

	// Expected audience of push tokens; derived from the request URL when empty
	PushAudience string `json:"pushAudience" yaml:"pushAudience"`
}

// LockConfig defines the broadcast lease backend ("local" or "redis")
type LockConfig struct {
	Driver        string        `json:"driver" yaml:"driver"`
	TTL           time.Duration `json:"ttl" yaml:"ttl"`
	RedisAddr     string        `json:"redisAddr" yaml:"redisAddr"`
	RedisPassword string        `json:"redisPassword" yaml:"redisPassword"`
	RedisDB       int           `json:"redisDb" yaml:"redisDb"`
}

// ResponseTokenConfig defines signing of professional response links
type ResponseTokenConfig struct {
	Secret  string        `json:"secret" yaml:"secret"`
	TTL     time.Duration `json:"ttl" yaml:"ttl"`
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// LoadWithEnv loads .yaml files through koanf and overlays environment variables.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	configFile, err := findConfigFile(currEnv, configPath...)
	if err != nil {
		return nil, err
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// ATTRIBUTION_BROADCASTWINDOW -> attribution.broadcastWindow
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func findConfigFile(currEnv string, configPath ...string) (string, error) {
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("config file %s.yaml not found in any search path", currEnv)
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "postgres"
	}
	if cfg.Attribution == nil {
		cfg.Attribution = DefaultAttributionConfig()
	}
	if cfg.Attribution.BroadcastWindow <= 0 {
		cfg.Attribution.BroadcastWindow = DefaultAttributionConfig().BroadcastWindow
	}
	if cfg.Notification == nil {
		cfg.Notification = DefaultNotificationConfig()
	}
	defaults := DefaultNotificationConfig()
	if cfg.Notification.SendTimeout <= 0 {
		cfg.Notification.SendTimeout = defaults.SendTimeout
	}
	if cfg.Notification.FanOutWorkers <= 0 {
		cfg.Notification.FanOutWorkers = defaults.FanOutWorkers
	}
	if cfg.Notification.ProfessionalTemplate == "" {
		cfg.Notification.ProfessionalTemplate = defaults.ProfessionalTemplate
	}
	if cfg.Reminder == nil || len(cfg.Reminder.Offsets) == 0 {
		cfg.Reminder = DefaultReminderConfig()
	}
}

// DefaultAttributionConfig returns the settings used when the section is absent
func DefaultAttributionConfig() *AttributionConfig {
	return &AttributionConfig{
		DefaultRadiusKm:     50,
		MaxRadiusKm:         300,
		MaxCandidates:       0,
		BroadcastWindow:     48 * time.Hour,
		ExpirySweepInterval: 5 * time.Minute,
	}
}

// DefaultNotificationConfig returns the settings used when the section is absent
func DefaultNotificationConfig() *NotificationConfig {
	return &NotificationConfig{
		SendTimeout:                    5 * time.Second,
		FanOutWorkers:                  8,
		MaxProfessionalAttachmentBytes: 5 << 20,
		ProfessionalTemplate:           "professional-attribution",
	}
}

// DefaultReminderConfig returns the 7D / 24H / 1H offsets
func DefaultReminderConfig() *ReminderConfig {
	return &ReminderConfig{
		Offsets: []ReminderOffset{
			{Type: "7D", Before: 7 * 24 * time.Hour},
			{Type: "24H", Before: 24 * time.Hour},
			{Type: "1H", Before: time.Hour},
		},
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		matched, next, ok := findExistingSegment(current, segment)
		if !ok {
			canonical = append(canonical, segment)
			current = nil

			continue
		}

		canonical = append(canonical, matched)
		current = next
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			normalized.WriteRune(unicode.ToLower(r))
		}
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST|PORT|USERNAME|PASSWORD}
// until the first index without host or port.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
