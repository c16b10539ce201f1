package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/core"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sentiment"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sources"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/store"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// 采集参数
	maxWorkers   int
	maxArticles  int
	waitTime     int
	retries      int
	pageTimeout  int
	batchTimeout int
	headless     bool
	sourceIDs    []string
	seedFile     string
	outputDir    string
	dbPath       string

	// 查询/导出参数
	filterSource   string
	filterLabel    string
	filterCategory string
	limit          int
	exportFile     string
)

var rootCmd = &cobra.Command{
	Use:   "newssentiment",
	Short: "全球新闻情感与市场情报采集工具",
	Long: `NewsSentiment - 全球新闻采集与市场情绪分析工具

从主流新闻发布商并发采集文章,本地完成情感分析、
关键词提取和主题分类,结果入库并生成市场情绪报告:
  • 无头浏览器会话池 + 静态抓取双路径
  • 每个发布商多套选择器候选,站点改版自动回退
  • 词典法情感分析与五档市场情绪分类
  • SQLite持久化与BI友好的CSV导出

示例:
  # 采集全部内置来源
  newssentiment

  # 只采集BBC和Reuters,每来源最多20篇
  newssentiment --sources bbc,reuters --max-articles 20

  # 从已入库数据导出CSV
  newssentiment export -o output

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 初始化日志系统
		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		config.MergeCLIFlags(maxWorkers, maxArticles, waitTime, retries,
			pageTimeout, batchTimeout, headless, sourceIDs)
		if outputDir != "" {
			config.Report.OutputDir = outputDir
		}
		if dbPath != "" {
			config.Storage.DBPath = dbPath
		}

		// 验证参数
		if err := ValidateFlags(&config.Scrape, seedFile); err != nil {
			return err
		}

		// 信号处理: 首次Ctrl+C取消批次等待已完成的结果,再次则强制退出
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("收到中断信号: %v, 正在停止采集...", sig)
			cancel()
			<-sigChan
			utils.Warn("再次收到中断信号, 强制退出")
			os.Exit(1)
		}()

		db, err := store.Open(config.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		pipeline := core.NewPipeline(config, db, sentiment.NewAnalyzer())

		// 外部种子文件替换单一来源的内置种子页
		if seedFile != "" {
			seeds, err := utils.ReadURLsFromFile(seedFile)
			if err != nil {
				return fmt.Errorf("读取种子文件失败: %w", err)
			}
			if err := pipeline.OverrideSeeds(config.Scrape.Sources[0], seeds); err != nil {
				return err
			}
		}

		run, err := pipeline.Run(ctx)
		if err != nil {
			return fmt.Errorf("采集运行失败: %w", err)
		}

		fmt.Println("\n==================================================")
		fmt.Println("📊 采集统计")
		fmt.Println("==================================================")
		fmt.Printf("✅ 文章总数: %d\n", run.Stats.TotalArticles)
		fmt.Printf("✅ 链接总数: %d\n", run.Stats.TotalLinks)
		fmt.Printf("❌ 失败URL数: %d\n", len(run.Stats.FailedURLs))
		fmt.Printf("⏱️  总耗时: %.2f秒 (%.1f 篇/分钟)\n", run.Stats.Duration, run.Stats.ArticlesPerMinute())
		fmt.Println("==================================================")

		utils.Info("✨ 采集任务完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("NewsSentiment %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - 新闻情感与市场情报采集工具")
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "列出内置新闻来源",
	Run: func(cmd *cobra.Command, args []string) {
		catalog := sources.DefaultCatalog()
		for _, entry := range catalog.Entries() {
			path := "静态抓取"
			if entry.RequiresRender {
				path = "浏览器渲染"
			}
			fmt.Printf("%-10s %-8s %d个种子页\n", entry.ID, path, len(entry.SeedURLs))
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "从数据库导出CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		if dbPath != "" {
			config.Storage.DBPath = dbPath
		}
		if outputDir != "" {
			config.Report.OutputDir = outputDir
		}

		db, err := store.Open(config.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := db.Query(store.Filter{
			Source:   filterSource,
			Label:    filterLabel,
			Category: filterCategory,
			Limit:    limit,
		})
		if err != nil {
			return err
		}

		reporter := utils.NewReporter(config.Report.OutputDir)
		return reporter.ExportCSV(articles, exportFile)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "基于已入库文章生成市场情绪报告",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		if dbPath != "" {
			config.Storage.DBPath = dbPath
		}

		db, err := store.Open(config.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := db.Query(store.Filter{Limit: limit})
		if err != nil {
			return err
		}

		report := utils.MarketReport(articles)
		if report == "" {
			return fmt.Errorf("数据库中没有市场相关类别的文章")
		}
		fmt.Println(report)
		return nil
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite数据库路径")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "报告输出目录")

	// 采集参数
	rootCmd.Flags().IntVar(&maxWorkers, "workers", 0, "渲染会话数/并发上限 (1-16)")
	rootCmd.Flags().IntVar(&maxArticles, "max-articles", 0, "单来源文章上限 (1-500)")
	rootCmd.Flags().IntVarP(&waitTime, "wait", "w", -1, "页面渲染等待时间(秒)")
	rootCmd.Flags().IntVar(&retries, "retries", -1, "提取失败的重试次数 (0-5)")
	rootCmd.Flags().IntVar(&pageTimeout, "page-timeout", 0, "单页导航超时(秒)")
	rootCmd.Flags().IntVar(&batchTimeout, "batch-timeout", -1, "批次总超时(秒), 0表示不限")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "无头浏览器模式")
	rootCmd.Flags().StringSliceVarP(&sourceIDs, "sources", "s", nil, "来源子集(逗号分隔), 空为全部")
	rootCmd.Flags().StringVarP(&seedFile, "seed-file", "f", "", "种子URL文件(需配合单一--sources)")

	// 查询/导出参数
	exportCmd.Flags().StringVar(&filterSource, "source", "", "按来源过滤")
	exportCmd.Flags().StringVar(&filterLabel, "label", "", "按情感标签过滤 (positive|negative|neutral)")
	exportCmd.Flags().StringVar(&filterCategory, "category", "", "按类别过滤")
	exportCmd.Flags().IntVar(&limit, "limit", 0, "最大条数, 0为不限")
	exportCmd.Flags().StringVar(&exportFile, "file", "news_sentiment_data.csv", "导出文件名")
	reportCmd.Flags().IntVar(&limit, "limit", 0, "参与汇总的最大条数, 0为不限")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
