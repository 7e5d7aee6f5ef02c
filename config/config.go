package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// 第三方身份与已有账号的 google_id 不一致时的处理策略
const (
	LinkPolicyKeep      = "keep"      // 保留原绑定，仍允许登录
	LinkPolicyReject    = "reject"    // 拒绝登录
	LinkPolicyOverwrite = "overwrite" // 以新身份覆盖
)

// AuthConfig JWT 与第三方登录配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	Google          GoogleConfig  `mapstructure:"google"`
}

// GoogleConfig Google 身份令牌校验与授权码登录配置
// 授权码流程使用 client_ids 的第一项，client_secret 为空时关闭
type GoogleConfig struct {
	ClientIDs    []string      `mapstructure:"client_ids"`
	LinkPolicy   string        `mapstructure:"link_policy"`
	ClientSecret string        `mapstructure:"client_secret"`
	RedirectURL  string        `mapstructure:"redirect_url"`
	StateTTL     time.Duration `mapstructure:"state_ttl"`
}

// OAuthEnabled 是否启用授权码登录
func (g *GoogleConfig) OAuthEnabled() bool {
	return g.ClientSecret != "" && len(g.ClientIDs) > 0 && g.ClientIDs[0] != ""
}

// ModerationConfig 内容审核（LLM）配置
type ModerationConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Temperature       float32       `mapstructure:"temperature"`
	Threshold         float64       `mapstructure:"threshold"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// RateLimitConfig 认证接口限流配置
type RateLimitConfig struct {
	AuthLimit  int           `mapstructure:"auth_limit"`
	AuthWindow time.Duration `mapstructure:"auth_window"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.max_body_bytes", 2<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "kutechnest")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Bangkok")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "kutechnest")
	v.SetDefault("auth.access_token_ttl", "60m")
	v.SetDefault("auth.refresh_token_ttl", "168h")
	v.SetDefault("auth.google.client_ids", []string{})
	v.SetDefault("auth.google.link_policy", LinkPolicyKeep)
	v.SetDefault("auth.google.client_secret", "")
	v.SetDefault("auth.google.redirect_url", "http://localhost:8000/api/v1/auth/google/callback")
	v.SetDefault("auth.google.state_ttl", "10m")

	v.SetDefault("moderation.enabled", true)
	v.SetDefault("moderation.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("moderation.model", "llama-3.3-70b-versatile")
	v.SetDefault("moderation.temperature", 0.1)
	v.SetDefault("moderation.threshold", 0.7)
	v.SetDefault("moderation.timeout", "20s")
	v.SetDefault("moderation.requests_per_minute", 30)

	v.SetDefault("rate_limit.auth_limit", 20)
	v.SetDefault("rate_limit.auth_window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("KUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		return fmt.Errorf("配置校验失败: refresh_token_ttl 必须大于 access_token_ttl")
	}
	switch c.Auth.Google.LinkPolicy {
	case LinkPolicyKeep, LinkPolicyReject, LinkPolicyOverwrite:
	default:
		return fmt.Errorf("配置校验失败: auth.google.link_policy 只能是 keep/reject/overwrite")
	}
	if c.Auth.Google.OAuthEnabled() {
		if c.Auth.Google.RedirectURL == "" {
			return fmt.Errorf("配置校验失败: 启用授权码登录时 auth.google.redirect_url 不能为空")
		}
		if c.Auth.Google.StateTTL <= 0 {
			return fmt.Errorf("配置校验失败: auth.google.state_ttl 必须大于 0")
		}
	}
	if c.Moderation.Threshold < 0 || c.Moderation.Threshold > 1 {
		return fmt.Errorf("配置校验失败: moderation.threshold 必须在 0-1 之间")
	}
	if c.Moderation.Enabled && c.Moderation.APIKey == "" {
		return fmt.Errorf("配置校验失败: 启用内容审核时 moderation.api_key 不能为空")
	}
	return nil
}
