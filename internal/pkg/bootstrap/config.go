// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"obsidianwear/internal/pkg/logger"
)

// Duration 让 yaml 里可以写 "1m" / "30s" 这样的时长。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std 转换回标准库类型。
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config 汇总了服务运行所需的全部配置。
// 配置来源：yaml 文件为主，个别字段允许环境变量覆盖。
type Config struct {
	App struct {
		Name     string `yaml:"name"`
		LogLevel string `yaml:"logLevel"`
		Cache    struct {
			TTL             Duration `yaml:"ttl"`
			RefreshInterval Duration `yaml:"refreshInterval"`
		} `yaml:"cache"`
	} `yaml:"app"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers           []string `yaml:"brokers"`
			NotificationTopic string   `yaml:"notificationTopic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Mailer struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"mailer"`
	} `yaml:"infra"`
}

var (
	currentConfig *Config
	configOnce    sync.Once
)

// Init 加载配置并初始化全局 logger。必须在 StartService 之前调用。
func Init() {
	configOnce.Do(func() {
		cfg := defaultConfig()

		path := getEnv("CONFIG_PATH", "configs/config.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			// 配置文件缺失时退回默认值，方便本地直接启动
			logger.Logger().Warn().Str("path", path).Err(err).Msg("config file not found, using defaults")
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Logger().Fatal().Str("path", path).Err(err).Msg("failed to parse config file")
		}

		applyEnvOverrides(cfg)
		currentConfig = cfg
		logger.Init(cfg.App.Name, cfg.App.LogLevel)
	})
}

// GetCurrentConfig 返回当前生效的配置。
func GetCurrentConfig() *Config {
	if currentConfig == nil {
		Init()
	}
	return currentConfig
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "store-service"
	cfg.App.LogLevel = "info"
	cfg.App.Cache.TTL = Duration(time.Minute)
	cfg.App.Cache.RefreshInterval = 0 // 默认关闭后台刷新，写路径同步失效是主机制
	cfg.Server.Port = 8080
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/obsidianwear?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.NotificationTopic = "order-notifications"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Mailer.Endpoint = ""
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	cfg.Infra.Mysql.DSN = getEnv("MYSQL_DSN", cfg.Infra.Mysql.DSN)
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", cfg.Infra.Redis.Addr)
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.Mailer.Endpoint = getEnv("MAILER_ENDPOINT", cfg.Infra.Mailer.Endpoint)
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
