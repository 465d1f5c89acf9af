// Package config 提供 TOML 配置加载、.env 预加载、环境变量覆盖与校验
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wyfcoding/netsettlement/pkg/logger"
	"github.com/wyfcoding/netsettlement/pkg/money"
)

// EnvPrefix 环境变量前缀，netting.ordering 对应 APP_NETTING_ORDERING
const EnvPrefix = "APP"

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 净额结算配置
	Netting NettingConfig `mapstructure:"netting"`
	// 待结算周期
	Cycles []CycleConfig `mapstructure:"cycles"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// Prometheus 监听端口
	Port int `mapstructure:"port"`
	// 指标路径
	Path string `mapstructure:"path"`
}

// NettingConfig 净额结算配置
type NettingConfig struct {
	// 币种代码，仅用于展示
	Currency string `mapstructure:"currency"`
	// 最小货币单位的小数位数，EUR 为 2
	Scale int32 `mapstructure:"scale"`
	// 撮合顺序：insertion 或 magnitude
	Ordering string `mapstructure:"ordering"`
	// 严格模式：空账本视为错误
	Strict bool `mapstructure:"strict"`
	// false 时只做双边轧差
	Multilateral bool `mapstructure:"multilateral"`
	// 参与方白名单，为空表示不限制
	Participants []string `mapstructure:"participants"`
	// 并发执行的周期数上限
	Concurrency int `mapstructure:"concurrency"`
	// 雪花 ID 节点号
	NodeID int64 `mapstructure:"node_id"`
	// 自动接受阈值（最小货币单位），不超过该金额的划转无需人工审批
	AutoAcceptThreshold int64 `mapstructure:"auto_accept_threshold"`
}

// CycleConfig 一个结算周期的输入
type CycleConfig struct {
	ID          string             `mapstructure:"id"`
	Period      string             `mapstructure:"period"`
	Obligations []ObligationConfig `mapstructure:"obligations"`
}

// ObligationConfig 一笔双边债务，金额为主币单位的十进制字符串
type ObligationConfig struct {
	Payer  string `mapstructure:"payer"`
	Payee  string `mapstructure:"payee"`
	Amount string `mapstructure:"amount"`
}

// Load 从 TOML 文件加载配置，支持 .env 与环境变量覆盖
func Load(configPath string) (*Config, error) {
	return load(configPath, true)
}

// LoadWithDefaults 从 TOML 文件加载配置，文件不存在或 path 为空时只使用默认值与环境变量
func LoadWithDefaults(configPath string) (*Config, error) {
	return load(configPath, false)
}

func load(configPath string, required bool) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && required {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 自动绑定环境变量（使用 _ 替代 .）
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	switch strings.ToLower(c.Logger.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logger format: %q", c.Logger.Format)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}
	if err := money.ValidateScale(c.Netting.Scale); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Netting.Ordering)) {
	case "insertion", "magnitude":
	default:
		return fmt.Errorf("invalid netting ordering: %q", c.Netting.Ordering)
	}
	if c.Netting.Concurrency < 0 {
		return fmt.Errorf("invalid netting concurrency: %d", c.Netting.Concurrency)
	}
	if c.Netting.NodeID < 0 || c.Netting.NodeID > 1023 {
		return fmt.Errorf("invalid node_id: %d", c.Netting.NodeID)
	}
	if c.Netting.AutoAcceptThreshold < 0 {
		return fmt.Errorf("invalid auto_accept_threshold: %d", c.Netting.AutoAcceptThreshold)
	}

	ids := make(map[string]struct{}, len(c.Cycles))
	for i, cycle := range c.Cycles {
		if cycle.ID == "" {
			continue
		}
		if _, ok := ids[cycle.ID]; ok {
			return fmt.Errorf("cycles[%d]: duplicate cycle id %q", i, cycle.ID)
		}
		ids[cycle.ID] = struct{}{}
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "netting")
	v.SetDefault("environment", "dev")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.file_path", "logs/netting.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("netting.currency", "EUR")
	v.SetDefault("netting.scale", 2)
	v.SetDefault("netting.ordering", "insertion")
	v.SetDefault("netting.strict", false)
	v.SetDefault("netting.multilateral", true)
	v.SetDefault("netting.concurrency", 4)
	v.SetDefault("netting.node_id", 1)
	// 100000 即 1000.00 EUR
	v.SetDefault("netting.auto_accept_threshold", 100000)
}

// GetEnv 读取环境变量，未设置或仅含空白时返回 fallback
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}
