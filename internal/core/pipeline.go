package core

import (
	"context"
	"fmt"
	"time"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/render"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/scrape"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sentiment"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sources"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/utils"
)

// ArticleStore 文章持久化抽象
type ArticleStore interface {
	// UpsertAll 批量写入,返回成功写入数;单篇失败不中断
	UpsertAll(articles []*models.Article) int
}

// Scorer 情感与关键词分析抽象
type Scorer interface {
	Score(text string) float64
	Keywords(text string, topN int) []string
}

// Pipeline 端到端采集流水线
// 采集 → 情感富化 → 入库 → 报告,每个环节的失败策略不同:
// 采集引擎初始化失败是致命的,单篇入库失败只记录
type Pipeline struct {
	cfg      *Config
	catalog  sources.Catalog
	store    ArticleStore
	scorer   Scorer
	reporter *utils.Reporter
}

// NewPipeline 创建流水线
func NewPipeline(cfg *Config, store ArticleStore, scorer Scorer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		catalog:  sources.DefaultCatalog(),
		store:    store,
		scorer:   scorer,
		reporter: utils.NewReporter(cfg.Report.OutputDir),
	}
}

// OverrideSeeds 用外部种子列表替换某个来源的内置种子页
func (p *Pipeline) OverrideSeeds(sourceID string, seeds []string) error {
	entry, ok := p.catalog.Get(sourceID)
	if !ok {
		return fmt.Errorf("未知的来源: %s", sourceID)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("种子列表为空")
	}
	entry.SeedURLs = seeds
	return nil
}

// Run 执行一次完整的采集运行
func (p *Pipeline) Run(ctx context.Context) (*models.ScrapeRun, error) {
	if err := p.cfg.Scrape.Validate(); err != nil {
		return nil, fmt.Errorf("抓取配置无效: %w", err)
	}

	catalog, err := p.catalog.Filter(p.cfg.Scrape.Sources)
	if err != nil {
		return nil, err
	}
	entries := catalog.Entries()

	needRender := false
	for _, entry := range entries {
		if entry.RequiresRender {
			needRender = true
			break
		}
	}

	rotator := NewAgentRotator(p.Agents())
	pageTimeout := time.Duration(p.cfg.Scrape.PageTimeout) * time.Second

	// 会话数先经过资源监控约束,再初始化浏览器
	var pool scrape.SessionPool
	if needRender {
		monitor := render.NewMonitor(render.MonitorConfig{})
		sessions := monitor.CapSessions(p.cfg.Scrape.MaxWorkers)

		browser, err := render.LaunchBrowser(p.cfg.Scrape.Headless)
		if err != nil {
			return nil, fmt.Errorf("初始化渲染引擎失败: %w", err)
		}
		defer browser.Close()

		settle := time.Duration(p.cfg.Scrape.WaitTime) * time.Second
		factory := render.NewBrowserFactory(browser, rotator.Next, settle)

		renderPool, err := render.NewPool(sessions, factory)
		if err != nil {
			return nil, fmt.Errorf("初始化会话池失败: %w", err)
		}
		defer renderPool.Close()

		pool = &poolAdapter{pool: renderPool}
	}

	static := render.NewStaticFetcher(pageTimeout, rotator.Next)

	orch := scrape.NewOrchestrator(pool, static, scrape.Config{
		Parallelism:  p.cfg.Scrape.MaxWorkers,
		MaxPerSource: p.cfg.Scrape.MaxArticlesPerSource,
		MinLinks:     p.cfg.Scrape.MinLinks,
		Retries:      p.cfg.Scrape.Retries,
		PageTimeout:  pageTimeout,
		BatchTimeout: time.Duration(p.cfg.Scrape.BatchTimeout) * time.Second,
		ShowProgress: true,
	})

	run := models.NewScrapeRun(p.cfg.Scrape)
	result, err := orch.Run(ctx, entries)
	if err != nil {
		return nil, err
	}
	run.Stats = result.Stats
	run.FinishedAt = time.Now()

	p.enrich(result.Articles)

	saved := p.store.UpsertAll(result.Articles)
	if saved < len(result.Articles) {
		utils.Warnf("入库: %d/%d 篇成功", saved, len(result.Articles))
	} else {
		utils.Infof("入库: %d 篇文章", saved)
	}

	p.report(run, result.Articles)
	return run, nil
}

// enrich 为采集到的文章补全情感、关键词和类别字段
func (p *Pipeline) enrich(articles []*models.Article) {
	for _, a := range articles {
		text := a.Title + " " + a.Content
		a.Category = sentiment.Categorize(a.Title, a.Content)
		a.SentimentScore = p.scorer.Score(text)
		a.SentimentLabel = sentiment.Label(a.SentimentScore)
		a.Keywords = p.scorer.Keywords(text, 10)
	}
}

// report 生成批次报告、CSV导出和控制台摘要
// 报告失败不影响运行结果,只记录
func (p *Pipeline) report(run *models.ScrapeRun, articles []*models.Article) {
	if err := p.reporter.SaveScrapeReport(run); err != nil {
		utils.Warnf("生成批次报告失败: %v", err)
	}

	if len(articles) > 0 {
		if err := p.reporter.ExportCSV(articles, "news_sentiment_data.csv"); err != nil {
			utils.Warnf("导出CSV失败: %v", err)
		}
		if report := utils.MarketReport(articles); report != "" {
			fmt.Println(report)
		}
	}

	stats := run.Stats
	utils.Infof("======== 运行摘要 ========")
	utils.Infof("文章: %d 篇 / 链接: %d 个", stats.TotalArticles, stats.TotalLinks)
	utils.Infof("速率: %.1f 篇/分钟", stats.ArticlesPerMinute())
	for id, st := range stats.PerSource {
		utils.Infof("  %s: 发现%d 尝试%d 成功%d 丢弃%d",
			id, st.LinksFound, st.Attempted, st.Succeeded, st.Dropped)
	}

	byLabel := make(map[string]int)
	for _, a := range articles {
		byLabel[a.SentimentLabel]++
	}
	utils.Infof("情感分布: 正面%d 负面%d 中性%d",
		byLabel[models.SentimentPositive], byLabel[models.SentimentNegative], byLabel[models.SentimentNeutral])

	if stats.TimedOut {
		utils.Warnf("本次运行因批次超时提前结束")
	}
}

// Agents 返回配置的UA池,未配置时为内置池
func (p *Pipeline) Agents() []string {
	if len(p.cfg.Agents) > 0 {
		return p.cfg.Agents
	}
	return DefaultUserAgents()
}

// poolAdapter 把render.Pool适配到采集引擎的会话池接口
type poolAdapter struct {
	pool *render.Pool
}

func (p *poolAdapter) Acquire() (scrape.Session, error) {
	h, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return &handleSession{pool: p.pool, handle: h}, nil
}

func (p *poolAdapter) Release(s scrape.Session) {
	if hs, ok := s.(*handleSession); ok {
		p.pool.Release(hs.handle)
	}
}

func (p *poolAdapter) Size() int {
	return p.pool.Size()
}

// handleSession 已检出的池会话
type handleSession struct {
	pool   *render.Pool
	handle *render.Handle
}

func (s *handleSession) Render(url string, timeout time.Duration) (string, error) {
	return s.handle.Render(url, timeout)
}

func (s *handleSession) MarkBad() {
	s.handle.MarkBad()
}
