package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zhouzirui/prompt-chat/backend/internal/service/webhook"
)

// 配置键，转为大写后即为对应的环境变量名。
const (
	KeyPort           = "port"
	KeyWebhookURL     = "webhook_url"
	KeyWebhookTimeout = "webhook_timeout"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyCORSOrigins    = "cors_origins"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Webhook WebhookConfig
	Log     LogConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// WebhookConfig 描述远端聊天工作流配置。
type WebhookConfig struct {
	URL string
	// Timeout 为 0 时不限制调用时长。
	Timeout time.Duration
}

// LogConfig 描述日志级别与输出格式。
type LogConfig struct {
	Level  string
	Format string
}

// NewViper 创建已注册默认值并启用环境变量读取的 viper 实例。
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// SetDefaults 注册内置默认值。
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyWebhookURL, webhook.DefaultURL)
	v.SetDefault(KeyWebhookTimeout, "0s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyCORSOrigins, "*")
}

// Load 从 viper (环境变量与命令行参数) 加载配置。
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	server, err := loadServerConfig(v)
	if err != nil {
		return nil, err
	}

	hook, err := loadWebhookConfig(v)
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig(v)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Webhook: hook, Log: logCfg}, nil
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(v *viper.Viper) (ServerConfig, error) {
	port := strings.TrimSpace(v.GetString(KeyPort))
	if port == "" {
		port = "8080"
	}

	var addr string
	switch {
	case strings.Contains(port, ":"):
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		addr = port
	case strings.Contains(port, " "):
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	default:
		addr = ":" + port
	}

	return ServerConfig{
		Addr:        addr,
		CORSOrigins: splitList(v.GetString(KeyCORSOrigins)),
	}, nil
}

func loadWebhookConfig(v *viper.Viper) (WebhookConfig, error) {
	raw := strings.TrimSpace(v.GetString(KeyWebhookURL))
	if raw == "" {
		raw = webhook.DefaultURL
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return WebhookConfig{}, fmt.Errorf("invalid WEBHOOK_URL value %q", raw)
	}

	timeout, err := parseDuration(v, KeyWebhookTimeout)
	if err != nil {
		return WebhookConfig{}, err
	}
	if timeout < 0 {
		return WebhookConfig{}, fmt.Errorf("invalid WEBHOOK_TIMEOUT value %q: must not be negative", v.GetString(KeyWebhookTimeout))
	}

	return WebhookConfig{URL: raw, Timeout: timeout}, nil
}

func loadLogConfig(v *viper.Viper) (LogConfig, error) {
	format := strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat)))
	switch format {
	case "", "auto":
		format = "auto"
	case "json", "console":
	default:
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}

	return LogConfig{
		Level:  strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		Format: format,
	}, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), raw, err)
	}
	return val, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
