package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/crimson-sun/authwatch/internal/model"
)

// Config holds all authwatch configuration. It is read once at startup and
// passed explicitly; nothing reads the environment after Load.
type Config struct {
	Whitelist model.Whitelist
	Connector ConnectorConfig
	Audit     AuditConfig
	Console   ConsoleConfig
	Email     EmailConfig
	Telegram  TelegramConfig
	Webhook   WebhookConfig
	Delivery  DeliveryConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// ConnectorConfig selects the log source.
type ConnectorConfig struct {
	Provider string // "journal" or "stdin"
	Unit     string // journal unit filter; empty follows everything
}

// AuditConfig holds audit log settings.
type AuditConfig struct {
	Path    string
	MaxSize int64 // bytes; 0 disables rotation
}

// ConsoleConfig holds console echo settings.
type ConsoleConfig struct {
	JSON bool // NDJSON instead of audit-format text
}

// EmailConfig holds SMTP relay settings.
type EmailConfig struct {
	Addr     string
	Username string
	Password string
	From     string
	To       string
}

// TelegramConfig holds bot API credentials.
type TelegramConfig struct {
	Token  string
	ChatID string
}

// WebhookConfig holds the incoming-webhook URL.
type WebhookConfig struct {
	URL string
}

// DeliveryConfig tunes the per-channel delivery queues. Workers and
// QueueSize apply to each channel; a full queue drops unless BlockOnFull.
type DeliveryConfig struct {
	Workers     int
	QueueSize   int
	BlockOnFull bool
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string // empty disables the metrics server
}

// Keys, as used with viper.
const (
	KeyConfigFile    = "config"
	KeyWhitelist     = "whitelist"
	KeyConnector     = "connector.provider"
	KeyUnit          = "connector.unit"
	KeyAuditPath     = "audit.path"
	KeyAuditMaxSize  = "audit.max_size"
	KeyConsoleJSON   = "console.json"
	KeyEmailAddr     = "email.addr"
	KeyEmailUser     = "email.username"
	KeyEmailPass     = "email.password"
	KeyEmailFrom     = "email.from"
	KeyEmailTo       = "email.to"
	KeyTelegramToken = "telegram.token"
	KeyTelegramChat  = "telegram.chat_id"
	KeyWebhookURL    = "webhook.url"
	KeyWorkers       = "delivery.workers"
	KeyQueueSize     = "delivery.queue_size"
	KeyBlockOnFull   = "delivery.block_on_full"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyMetricsAddr   = "metrics.addr"
)

// envBindings maps configuration keys to environment variables.
var envBindings = map[string]string{
	KeyConfigFile:    "AUTHWATCH_CONFIG",
	KeyWhitelist:     "MON_WHITELIST",
	KeyConnector:     "AUTHWATCH_CONNECTOR",
	KeyUnit:          "AUTHWATCH_UNIT",
	KeyAuditPath:     "AUTHWATCH_AUDIT_LOG",
	KeyAuditMaxSize:  "AUTHWATCH_AUDIT_MAX_SIZE",
	KeyConsoleJSON:   "AUTHWATCH_CONSOLE_JSON",
	KeyEmailAddr:     "AUTHWATCH_SMTP_ADDR",
	KeyEmailUser:     "SMTP_USER",
	KeyEmailPass:     "SMTP_PASS",
	KeyEmailFrom:     "ALERT_EMAIL_FROM",
	KeyEmailTo:       "ALERT_EMAIL_TO",
	KeyTelegramToken: "TG_TOKEN",
	KeyTelegramChat:  "TG_CHAT",
	KeyWebhookURL:    "SLACK_WEBHOOK",
	KeyWorkers:       "AUTHWATCH_WORKERS",
	KeyQueueSize:     "AUTHWATCH_QUEUE_SIZE",
	KeyBlockOnFull:   "AUTHWATCH_BLOCK_ON_FULL",
	KeyLogLevel:      "AUTHWATCH_LOG_LEVEL",
	KeyLogFormat:     "AUTHWATCH_LOG_FORMAT",
	KeyMetricsAddr:   "AUTHWATCH_METRICS_ADDR",
}

// New returns a viper instance with authwatch defaults and environment
// bindings. Callers may bind command-line flags on top before FromViper.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyConnector, "journal")
	v.SetDefault(KeyAuditPath, "/var/log/security_alerts.log")
	v.SetDefault(KeyAuditMaxSize, 0)
	v.SetDefault(KeyEmailAddr, "smtp.gmail.com:587")
	v.SetDefault(KeyWorkers, 4)
	v.SetDefault(KeyQueueSize, 1024)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	for key, env := range envBindings {
		// BindEnv only fails when given no key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads configuration from the environment (and the optional YAML
// file named by AUTHWATCH_CONFIG).
func Load() (Config, error) {
	return FromViper(New())
}

// FromViper builds a Config from v. If a config file is named, it is read
// first; environment variables and bound flags take precedence over it.
func FromViper(v *viper.Viper) (Config, error) {
	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	wl, err := whitelist(v.Get(KeyWhitelist))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Whitelist: wl,
		Connector: ConnectorConfig{
			Provider: v.GetString(KeyConnector),
			Unit:     v.GetString(KeyUnit),
		},
		Audit: AuditConfig{
			Path:    v.GetString(KeyAuditPath),
			MaxSize: v.GetInt64(KeyAuditMaxSize),
		},
		Console: ConsoleConfig{
			JSON: v.GetBool(KeyConsoleJSON),
		},
		Email: EmailConfig{
			Addr:     v.GetString(KeyEmailAddr),
			Username: v.GetString(KeyEmailUser),
			Password: v.GetString(KeyEmailPass),
			From:     v.GetString(KeyEmailFrom),
			To:       v.GetString(KeyEmailTo),
		},
		Telegram: TelegramConfig{
			Token:  v.GetString(KeyTelegramToken),
			ChatID: v.GetString(KeyTelegramChat),
		},
		Webhook: WebhookConfig{
			URL: v.GetString(KeyWebhookURL),
		},
		Delivery: DeliveryConfig{
			Workers:     v.GetInt(KeyWorkers),
			QueueSize:   v.GetInt(KeyQueueSize),
			BlockOnFull: v.GetBool(KeyBlockOnFull),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString(KeyMetricsAddr),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
// Incomplete channel credentials are not errors: the channel is disabled.
func (c Config) Validate() error {
	var errs []error
	if c.Connector.Provider == "" {
		errs = append(errs, errors.New("connector provider is empty"))
	}
	if c.Audit.Path == "" {
		errs = append(errs, errors.New("audit path is empty"))
	}
	if c.Audit.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("audit max size %d is negative", c.Audit.MaxSize))
	}
	if c.Delivery.Workers < 1 {
		errs = append(errs, fmt.Errorf("delivery workers %d must be at least 1", c.Delivery.Workers))
	}
	if c.Delivery.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("delivery queue size %d is negative", c.Delivery.QueueSize))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format %q must be text or json", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// whitelist accepts a comma-separated string (environment) or a YAML list.
func whitelist(raw any) (model.Whitelist, error) {
	switch v := raw.(type) {
	case nil:
		return model.NewWhitelist(), nil
	case string:
		return model.ParseWhitelist(v), nil
	case []string:
		return model.NewWhitelist(v...), nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return model.Whitelist{}, fmt.Errorf("config: whitelist entry %v is not a string", item)
			}
			names = append(names, s)
		}
		return model.NewWhitelist(names...), nil
	default:
		return model.Whitelist{}, fmt.Errorf("config: whitelist has unsupported type %T", raw)
	}
}
