package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Session  SessionConfig  `mapstructure:"session"`
	Report   ReportConfig   `mapstructure:"report"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大生命周期(分钟)
}

// AdminConfig 管理员凭据 (通过环境变量 DOWNWATCH_ADMIN_* 注入)
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"` // 明文或bcrypt哈希
}

// SessionConfig 管理员会话配置
type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	ExpireHour int    `mapstructure:"expire_hour"` // 会话过期时间(小时)
}

// ReportConfig 故障上报配置
type ReportConfig struct {
	WindowHours   int `mapstructure:"window_hours"`   // 滑动窗口(小时)
	DownThreshold int `mapstructure:"down_threshold"` // 判定故障的上报数阈值
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimitLogin      float64 `mapstructure:"rate_limit_login"`       // 登录每秒请求数
	RateLimitLoginBurst int     `mapstructure:"rate_limit_login_burst"` // 登录突发容量
	IPBlacklistCacheTTL int     `mapstructure:"ip_blacklist_cache_ttl"` // IP黑名单缓存时间(秒)
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别: debug, info, warn, error
}

var cfg *Config

// getExeDir 获取可执行文件所在目录
func getExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	exeDir := getExeDir()

	// 按优先级添加配置路径
	viper.AddConfigPath(exeDir)
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/downwatch")

	// 环境变量覆盖 (DOWNWATCH_ADMIN_PASSWORD 等)
	viper.SetEnvPrefix("downwatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// 配置文件不存在，创建默认配置
			if err := createDefaultConfig(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func Get() *Config {
	return cfg
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	// Database
	viper.SetDefault("database.host", "127.0.0.1")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.user", "downwatch")
	viper.SetDefault("database.password", "downwatch123")
	viper.SetDefault("database.dbname", "downwatch")
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", 60) // 60分钟

	// Admin (生产环境务必通过环境变量覆盖)
	viper.SetDefault("admin.username", "admin")
	viper.SetDefault("admin.password", "admin123")

	// Session
	viper.SetDefault("session.secret", "change-this-secret-key-in-production")
	viper.SetDefault("session.expire_hour", 24)

	// Report
	viper.SetDefault("report.window_hours", 24)
	viper.SetDefault("report.down_threshold", 30)

	// Security
	viper.SetDefault("security.rate_limit_login", 2)
	viper.SetDefault("security.rate_limit_login_burst", 5)
	viper.SetDefault("security.ip_blacklist_cache_ttl", 30)

	// Log
	viper.SetDefault("log.level", "info")
}

func createDefaultConfig() error {
	configContent := `# Downwatch 配置文件
# 管理员凭据和会话密钥建议通过环境变量注入:
#   DOWNWATCH_ADMIN_USERNAME / DOWNWATCH_ADMIN_PASSWORD / DOWNWATCH_SESSION_SECRET

server:
  host: "0.0.0.0"
  port: 8080

database:
  host: "127.0.0.1"
  port: 3306
  user: "downwatch"
  password: "downwatch123"
  dbname: "downwatch"
  max_open_conns: 100
  max_idle_conns: 10
  conn_max_lifetime: 60

admin:
  username: "admin"
  password: "admin123"

session:
  secret: "change-this-secret-key-in-production"
  expire_hour: 24

report:
  window_hours: 24
  down_threshold: 30

security:
  rate_limit_login: 2
  rate_limit_login_burst: 5
  ip_blacklist_cache_ttl: 30

log:
  level: "info"
`

	configPath := filepath.Join(getExeDir(), "config.yaml")
	return os.WriteFile(configPath, []byte(configContent), 0644)
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// WindowMillis 滑动窗口长度(毫秒)
func (c *ReportConfig) WindowMillis() int64 {
	return int64(c.WindowHours) * 3600 * 1000
}
