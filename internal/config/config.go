// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，环境变量可覆盖文件中的值
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"room_chat_server/pkg/constants"

	"github.com/BurntSushi/toml"           // TOML 配置文件解析库
	"github.com/joho/godotenv"             // .env 文件加载
	"github.com/kelseyhightower/envconfig" // 环境变量解码
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName    string `toml:"appName"`    // 应用名称
	Host       string `toml:"host"`       // 监听地址，如 "0.0.0.0"
	Port       int    `toml:"port"`       // 监听端口
	Mode       string `toml:"mode"`       // 运行模式：dev / release
	ClientURL  string `toml:"clientUrl"`  // 允许跨域的前端地址
	PublicPath string `toml:"publicPath"` // 静态客户端目录，留空则不挂载
}

// ChatConfig 聊天室配置
type ChatConfig struct {
	DefaultRoom  string   `toml:"defaultRoom"`  // 空白房间名回退到该房间
	Rooms        []string `toml:"rooms"`        // 预设房间
	HistoryLimit int      `toml:"historyLimit"` // 每个房间保留的历史条数
	PageSize     int      `toml:"pageSize"`     // 默认分页大小
	MaxFileSize  int      `toml:"maxFileSize"`  // 内联文件最大字节数
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// PersistenceConfig 持久化镜像配置
type PersistenceConfig struct {
	Driver    string        `toml:"driver"`    // mongo / mysql / redis，留空为纯内存模式
	Timeout   time.Duration `toml:"timeout"`   // 单次存储操作超时
	Workers   int           `toml:"workers"`   // 镜像写入 worker 数
	QueueSize int           `toml:"queueSize"` // 镜像写入队列长度
}

// MongoConfig MongoDB 连接配置
type MongoConfig struct {
	URI         string `toml:"uri"`
	Database    string `toml:"database"`
	Collection  string `toml:"collection"`
	MaxPoolSize uint64 `toml:"maxPoolSize"`
	MinPoolSize uint64 `toml:"minPoolSize"`
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr      string `toml:"addr"`      // host:port
	Password  string `toml:"password"`  // 无密码留空
	Db        int    `toml:"db"`        // 数据库编号
	KeyPrefix string `toml:"keyPrefix"` // 键前缀
}

// KafkaConfig Kafka 镜像配置
type KafkaConfig struct {
	Enabled   bool          `toml:"enabled"`
	HostPort  string        `toml:"hostPort"`  // 逗号分隔的 broker 列表
	ChatTopic string        `toml:"chatTopic"` // 已提交消息的镜像主题
	Timeout   time.Duration `toml:"timeout"`   // 写超时
}

// RateLimitConfig /api 限流配置
type RateLimitConfig struct {
	Window time.Duration `toml:"window"` // 统计窗口
	Max    int           `toml:"max"`    // 窗口内每个 IP 的最大请求数
}

// SecurityConfig 安全响应头配置
type SecurityConfig struct {
	SSLRedirect bool   `toml:"sslRedirect"` // 是否把 HTTP 重定向到 HTTPS
	SSLHost     string `toml:"sslHost"`
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 范围 0-1023
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig        `toml:"mainConfig"`
	ChatConfig        `toml:"chatConfig"`
	LogConfig         `toml:"logConfig"`
	PersistenceConfig `toml:"persistenceConfig"`
	MongoConfig       `toml:"mongoConfig"`
	MysqlConfig       `toml:"mysqlConfig"`
	RedisConfig       `toml:"redisConfig"`
	KafkaConfig       `toml:"kafkaConfig"`
	RateLimitConfig   `toml:"rateLimitConfig"`
	SecurityConfig    `toml:"securityConfig"`
	SnowflakeConfig   `toml:"snowflakeConfig"`
}

// envOverrides 可通过环境变量覆盖的字段，未设置的保持文件中的值
type envOverrides struct {
	Port         *int    `envconfig:"PORT"`
	Mode         *string `envconfig:"APP_MODE"`
	NodeEnv      *string `envconfig:"NODE_ENV"`
	ClientURL    *string `envconfig:"CLIENT_URL"`
	DefaultRoom  *string `envconfig:"DEFAULT_ROOM"`
	ChatRooms    *string `envconfig:"CHAT_ROOMS"`
	HistoryLimit *int    `envconfig:"MESSAGE_HISTORY_LIMIT"`
	PageSize     *int    `envconfig:"MESSAGE_PAGE_SIZE"`
	Driver       *string `envconfig:"PERSISTENCE_DRIVER"`
	MongoURI     *string `envconfig:"MONGODB_URI"`
	RedisAddr    *string `envconfig:"REDIS_ADDR"`
	KafkaBrokers *string `envconfig:"KAFKA_BROKERS"`
	LogLevel     *string `envconfig:"LOG_LEVEL"`
	MachineID    *int64  `envconfig:"SNOWFLAKE_MACHINE_ID"`
}

// configPaths 候选配置文件路径（优先加载本地配置）
var configPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		MainConfig: MainConfig{
			AppName:   "room_chat_server",
			Host:      "0.0.0.0",
			Port:      5000,
			Mode:      "dev",
			ClientURL: "http://localhost:5173",
		},
		ChatConfig: ChatConfig{
			DefaultRoom:  constants.DEFAULT_ROOM,
			Rooms:        []string{"general", "tech", "gaming", "support"},
			HistoryLimit: constants.DEFAULT_HISTORY_LIMIT,
			PageSize:     constants.DEFAULT_PAGE_SIZE,
			MaxFileSize:  constants.FILE_MAX_SIZE,
		},
		LogConfig: LogConfig{LogPath: "logs", Level: "info"},
		PersistenceConfig: PersistenceConfig{
			Timeout:   5 * time.Second,
			Workers:   4,
			QueueSize: 1024,
		},
		MongoConfig: MongoConfig{
			Database:    "chat",
			Collection:  "messages",
			MaxPoolSize: 10,
			MinPoolSize: 2,
		},
		RedisConfig:     RedisConfig{Addr: "127.0.0.1:6379", KeyPrefix: "chat"},
		KafkaConfig:     KafkaConfig{ChatTopic: "chat-messages", Timeout: 5 * time.Second},
		RateLimitConfig: RateLimitConfig{Window: 15 * time.Minute, Max: 100},
		SnowflakeConfig: SnowflakeConfig{MachineID: 1},
	}
}

// Load 依次加载 .env、配置文件和环境变量
// 找不到配置文件时使用默认值；文件存在但解析失败时返回错误
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load() // .env 不存在时忽略

	if len(paths) == 0 {
		paths = configPaths
	}
	cfg := Default()
	for _, path := range paths {
		_, err := toml.DecodeFile(path, cfg)
		if err == nil {
			break
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// applyEnv 使用环境变量覆盖配置
func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if env.Port != nil {
		c.MainConfig.Port = *env.Port
	}
	if env.NodeEnv != nil {
		c.MainConfig.Mode = modeFromNodeEnv(*env.NodeEnv)
	}
	if env.Mode != nil {
		c.MainConfig.Mode = *env.Mode
	}
	if env.ClientURL != nil {
		c.MainConfig.ClientURL = *env.ClientURL
	}
	if env.DefaultRoom != nil {
		c.ChatConfig.DefaultRoom = *env.DefaultRoom
	}
	if env.ChatRooms != nil {
		if rooms := SplitRooms(*env.ChatRooms); len(rooms) > 0 {
			c.ChatConfig.Rooms = rooms
		}
	}
	if env.HistoryLimit != nil {
		c.ChatConfig.HistoryLimit = *env.HistoryLimit
	}
	if env.PageSize != nil {
		c.ChatConfig.PageSize = *env.PageSize
	}
	if env.Driver != nil {
		c.PersistenceConfig.Driver = *env.Driver
	}
	if env.MongoURI != nil {
		c.MongoConfig.URI = *env.MongoURI
		if env.Driver == nil && c.MongoConfig.URI != "" {
			c.PersistenceConfig.Driver = "mongo"
		}
	}
	if env.RedisAddr != nil {
		c.RedisConfig.Addr = *env.RedisAddr
	}
	if env.KafkaBrokers != nil {
		c.KafkaConfig.HostPort = *env.KafkaBrokers
		c.KafkaConfig.Enabled = *env.KafkaBrokers != ""
	}
	if env.LogLevel != nil {
		c.LogConfig.Level = *env.LogLevel
	}
	if env.MachineID != nil {
		c.SnowflakeConfig.MachineID = *env.MachineID
	}
	return nil
}

// normalize 修正非法值
func (c *Config) normalize() {
	c.ChatConfig.DefaultRoom = strings.TrimSpace(c.ChatConfig.DefaultRoom)
	if c.ChatConfig.DefaultRoom == "" {
		c.ChatConfig.DefaultRoom = constants.DEFAULT_ROOM
	}
	rooms := make([]string, 0, len(c.ChatConfig.Rooms))
	for _, r := range c.ChatConfig.Rooms {
		if r = strings.TrimSpace(r); r != "" {
			rooms = append(rooms, r)
		}
	}
	c.ChatConfig.Rooms = rooms
	if c.ChatConfig.HistoryLimit <= 0 {
		c.ChatConfig.HistoryLimit = constants.DEFAULT_HISTORY_LIMIT
	}
	if c.ChatConfig.PageSize <= 0 {
		c.ChatConfig.PageSize = constants.DEFAULT_PAGE_SIZE
	}
	c.PersistenceConfig.Driver = strings.ToLower(strings.TrimSpace(c.PersistenceConfig.Driver))
}

// SplitRooms 解析逗号分隔的房间列表，去除空白和空项
func SplitRooms(raw string) []string {
	rooms := make([]string, 0)
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

func modeFromNodeEnv(env string) string {
	if strings.EqualFold(env, "production") {
		return "release"
	}
	return "dev"
}

// IsRelease 是否为生产模式
func (c *Config) IsRelease() bool {
	return c.MainConfig.Mode == "release"
}
