package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// 不存在配置文件时应回落到默认值
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Scrape.MaxWorkers != 6 {
		t.Errorf("MaxWorkers = %d, want 6", config.Scrape.MaxWorkers)
	}
	if config.Scrape.MaxArticlesPerSource != 60 {
		t.Errorf("MaxArticlesPerSource = %d, want 60", config.Scrape.MaxArticlesPerSource)
	}
	if config.Scrape.Retries != 1 {
		t.Errorf("Retries = %d, want 1", config.Scrape.Retries)
	}
	if config.Scrape.PageTimeout != 20 {
		t.Errorf("PageTimeout = %d, want 20", config.Scrape.PageTimeout)
	}
	if config.Scrape.BatchTimeout != 600 {
		t.Errorf("BatchTimeout = %d, want 600", config.Scrape.BatchTimeout)
	}
	if !config.Scrape.Headless {
		t.Error("Headless 默认应为true")
	}
	if config.Scrape.MinLinks != 5 {
		t.Errorf("MinLinks = %d, want 5", config.Scrape.MinLinks)
	}
	if config.Storage.DBPath != "data/news_articles.db" {
		t.Errorf("DBPath = %s", config.Storage.DBPath)
	}
	if config.Report.OutputDir != "output" {
		t.Errorf("OutputDir = %s", config.Report.OutputDir)
	}
	if config.Logging.Level != "info" {
		t.Errorf("Logging.Level = %s, want info", config.Logging.Level)
	}
	if len(config.Agents) != 5 {
		t.Errorf("UA池数量 = %d, want 5", len(config.Agents))
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
scrape:
  max_workers: 4
  max_articles_per_source: 20
  sources:
    - bbc
    - reuters
storage:
  db_path: /tmp/test_articles.db
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Scrape.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, want 4", config.Scrape.MaxWorkers)
	}
	if config.Scrape.MaxArticlesPerSource != 20 {
		t.Errorf("MaxArticlesPerSource = %d, want 20", config.Scrape.MaxArticlesPerSource)
	}
	if len(config.Scrape.Sources) != 2 || config.Scrape.Sources[0] != "bbc" {
		t.Errorf("Sources = %v", config.Scrape.Sources)
	}
	if config.Storage.DBPath != "/tmp/test_articles.db" {
		t.Errorf("DBPath = %s", config.Storage.DBPath)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", config.Logging.Level)
	}

	// 未覆盖的键保持默认值
	if config.Scrape.Retries != 1 {
		t.Errorf("Retries = %d, want 1 (默认值)", config.Scrape.Retries)
	}
}

func TestConfig_MergeCLIFlags(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	config.MergeCLIFlags(8, 30, 2, 2, 15, 300, false, []string{"cnn"})

	if config.Scrape.MaxWorkers != 8 {
		t.Errorf("MaxWorkers = %d, want 8", config.Scrape.MaxWorkers)
	}
	if config.Scrape.MaxArticlesPerSource != 30 {
		t.Errorf("MaxArticlesPerSource = %d, want 30", config.Scrape.MaxArticlesPerSource)
	}
	if config.Scrape.WaitTime != 2 {
		t.Errorf("WaitTime = %d, want 2", config.Scrape.WaitTime)
	}
	if config.Scrape.Retries != 2 {
		t.Errorf("Retries = %d, want 2", config.Scrape.Retries)
	}
	if config.Scrape.PageTimeout != 15 {
		t.Errorf("PageTimeout = %d, want 15", config.Scrape.PageTimeout)
	}
	if config.Scrape.BatchTimeout != 300 {
		t.Errorf("BatchTimeout = %d, want 300", config.Scrape.BatchTimeout)
	}
	if config.Scrape.Headless {
		t.Error("Headless 应被命令行参数覆盖为false")
	}
	if len(config.Scrape.Sources) != 1 || config.Scrape.Sources[0] != "cnn" {
		t.Errorf("Sources = %v", config.Scrape.Sources)
	}
}

func TestAgentRotator(t *testing.T) {
	agents := []string{"ua-1", "ua-2", "ua-3"}
	r := NewAgentRotator(agents)

	// 轮换一圈后回到起点
	for i := 0; i < 6; i++ {
		want := agents[i%3]
		if got := r.Next(); got != want {
			t.Errorf("Next() 第%d次 = %s, want %s", i, got, want)
		}
	}
}

func TestAgentRotator_EmptyFallsBack(t *testing.T) {
	r := NewAgentRotator(nil)
	if ua := r.Next(); ua == "" {
		t.Error("空UA池应回落到内置池")
	}
}
