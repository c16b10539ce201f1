package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
)

// Config 应用程序配置
type Config struct {
	Scrape  models.ScrapeConfig `mapstructure:"scrape"`
	Logging LoggingConfig       `mapstructure:"logging"`
	Storage StorageConfig       `mapstructure:"storage"`
	Report  ReportConfig        `mapstructure:"report"`
	Agents  []string            `mapstructure:"user_agents"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ReportConfig 报告配置
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 添加配置搜索路径
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".newssentiment"))
		}
	}

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在,使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在,使用默认值
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 抓取配置默认值
	v.SetDefault("scrape.max_workers", 6)
	v.SetDefault("scrape.max_articles_per_source", 60)
	v.SetDefault("scrape.wait_time", 3)
	v.SetDefault("scrape.retries", 1)
	v.SetDefault("scrape.page_timeout", 20)
	v.SetDefault("scrape.batch_timeout", 600)
	v.SetDefault("scrape.headless", true)
	v.SetDefault("scrape.sources", []string{})
	v.SetDefault("scrape.min_links", 5)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 存储配置默认值
	v.SetDefault("storage.db_path", "data/news_articles.db")

	// 报告配置默认值
	v.SetDefault("report.output_dir", "output")

	// User-Agent池默认值
	v.SetDefault("user_agents", DefaultUserAgents())
}

// GetScrapeConfig 从配置中提取抓取配置
func (c *Config) GetScrapeConfig() models.ScrapeConfig {
	return c.Scrape
}

// MergeCLIFlags 合并命令行参数到配置
func (c *Config) MergeCLIFlags(
	maxWorkers int,
	maxArticles int,
	waitTime int,
	retries int,
	pageTimeout int,
	batchTimeout int,
	headless bool,
	sources []string,
) {
	// 命令行参数优先于配置文件
	if maxWorkers > 0 {
		c.Scrape.MaxWorkers = maxWorkers
	}
	if maxArticles > 0 {
		c.Scrape.MaxArticlesPerSource = maxArticles
	}
	if waitTime >= 0 {
		c.Scrape.WaitTime = waitTime
	}
	if retries >= 0 {
		c.Scrape.Retries = retries
	}
	if pageTimeout > 0 {
		c.Scrape.PageTimeout = pageTimeout
	}
	if batchTimeout >= 0 {
		c.Scrape.BatchTimeout = batchTimeout
	}
	c.Scrape.Headless = headless
	if len(sources) > 0 {
		c.Scrape.Sources = sources
	}
}
