// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	BoardPort       int           `mapstructure:"board_port"`
	Debug           bool          `mapstructure:"debug"`
	LogLevel        string        `mapstructure:"log_level"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// RosterConfig 签到板配置
type RosterConfig struct {
	MaxCourts  int      `mapstructure:"max_courts"`
	Genders    []string `mapstructure:"genders"`
	StorageKey string   `mapstructure:"storage_key"`
}

// StorageConfig 持久化配置
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// 存储后端
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// LoadConfig 从文件加载配置到 GlobalConfig
func LoadConfig(configPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	GlobalConfig = *cfg
	return nil
}

// Load 读取配置文件，环境变量优先（如 SERVER_BOARD_PORT）
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default 返回只包含默认值的配置
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// 默认值都是基础类型，不会解析失败
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.board_port", 8090)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.refresh_interval", "15s")

	v.SetDefault("roster.max_courts", 4)
	v.SetDefault("roster.genders", []string{"M", "F"})
	v.SetDefault("roster.storage_key", "tennisClubState")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.key_prefix", "courtboard:")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "courtboard")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Roster.MaxCourts < 1 {
		return fmt.Errorf("roster.max_courts 必须大于0: %d", c.Roster.MaxCourts)
	}
	if c.Server.RefreshInterval <= 0 {
		return fmt.Errorf("server.refresh_interval 必须大于0: %s", c.Server.RefreshInterval)
	}
	if c.Roster.StorageKey == "" {
		return fmt.Errorf("roster.storage_key 不能为空")
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("未知的存储后端: %s", c.Storage.Backend)
	}
	return nil
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
