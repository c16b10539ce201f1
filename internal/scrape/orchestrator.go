package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sources"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/utils"
)

// Session 可标记失效的渲染会话
type Session interface {
	Renderer

	// MarkBad 标记会话失效,池会在下次分发前重建
	MarkBad()
}

// SessionPool 会话池抽象
type SessionPool interface {
	Acquire() (Session, error)
	Release(Session)
	Size() int
}

// Config 采集引擎配置
type Config struct {
	Parallelism  int           // 工作协程数上限(实际受池容量约束)
	MaxPerSource int           // 单个来源的文章数上限
	MinLinks     int           // 发现阶段触发回退选择器的阈值
	Retries      int           // 瞬时失败的额外尝试次数
	PageTimeout  time.Duration // 单页渲染超时
	BatchTimeout time.Duration // 整批任务的总时限,0为不限
	ShowProgress bool          // 提取阶段显示进度条
}

// Result 一次采集运行的产出
type Result struct {
	Articles []*models.Article
	Stats    *models.ScrapeStats
}

// Orchestrator 采集编排器
// 两阶段流水线: 先并发发现各来源的文章链接,合并去重后
// 再并发提取正文。两个阶段共用同一个会话池
type Orchestrator struct {
	pool       SessionPool
	static     Renderer // 静态路径,nil时全部走渲染会话
	discoverer *Discoverer
	extractor  *Extractor
	dedup      *Deduplicator
	cfg        Config

	// backoff 重试前的等待时长,默认1-3秒随机
	backoff func() time.Duration
}

// NewOrchestrator 创建采集编排器
func NewOrchestrator(pool SessionPool, static Renderer, cfg Config) *Orchestrator {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 3
	}
	if cfg.MaxPerSource <= 0 {
		cfg.MaxPerSource = 10
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 20 * time.Second
	}

	return &Orchestrator{
		pool:       pool,
		static:     static,
		discoverer: NewDiscoverer(cfg.PageTimeout, cfg.MinLinks, 5*cfg.MaxPerSource),
		extractor:  NewExtractor(cfg.PageTimeout),
		dedup:      NewDeduplicator(),
		cfg:        cfg,
		backoff: func() time.Duration {
			return time.Duration(1000+rand.Intn(2000)) * time.Millisecond
		},
	}
}

type seedTask struct {
	seed string
	src  *sources.Entry
}

type extractTask struct {
	url string
	src *sources.Entry
}

// Run 对给定来源执行一次完整采集
// 单个种子或文章的失败只影响自身;批次超时后停止等待,
// 已完成的结果照常返回,迟到的结果被丢弃
func (o *Orchestrator) Run(ctx context.Context, entries []*sources.Entry) (*Result, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("没有可采集的来源")
	}

	start := time.Now()
	stats := models.NewScrapeStats()
	var statsMu sync.Mutex

	if o.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.BatchTimeout)
		defer cancel()
	}

	// ---- 第一阶段: 链接发现 ----
	perSource := o.discoverAll(ctx, entries)

	// 合并、去重、按来源截断
	var tasks []extractTask
	for _, entry := range entries {
		links := perSource[entry.ID]
		count := 0
		for _, link := range links {
			if count >= o.cfg.MaxPerSource {
				break
			}
			if o.dedup.Seen(link) {
				continue
			}
			tasks = append(tasks, extractTask{url: link, src: entry})
			count++
		}

		statsMu.Lock()
		st := stats.PerSource[entry.ID]
		st.LinksFound = count
		stats.PerSource[entry.ID] = st
		statsMu.Unlock()

		utils.Infof("来源 %s: 发现 %d 个链接, 采集 %d 个", entry.ID, len(links), count)
	}
	stats.TotalLinks = len(tasks)

	// ---- 第二阶段: 内容提取 ----
	articles := o.extractAll(ctx, tasks, stats, &statsMu)

	statsMu.Lock()
	stats.TotalArticles = len(articles)
	stats.Duration = time.Since(start).Seconds()
	if ctx.Err() != nil {
		stats.TimedOut = true
	}
	final := stats.Clone()
	statsMu.Unlock()

	utils.Infof("采集完成: %d 篇文章 / %d 个链接, 耗时 %.1f 秒",
		final.TotalArticles, final.TotalLinks, final.Duration)

	return &Result{Articles: articles, Stats: final}, nil
}

// discoverAll 并发渲染所有种子页,按来源汇总链接
func (o *Orchestrator) discoverAll(ctx context.Context, entries []*sources.Entry) map[string][]string {
	var seeds []seedTask
	for _, entry := range entries {
		for _, seed := range entry.SeedURLs {
			seeds = append(seeds, seedTask{seed: seed, src: entry})
		}
	}

	perSource := make(map[string]map[string]struct{})
	var mu sync.Mutex

	taskCh := make(chan seedTask)
	var wg sync.WaitGroup
	for w := 0; w < o.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				if ctx.Err() != nil {
					continue
				}
				links, err := o.discoverSeed(task)
				if err != nil {
					utils.Warnf("种子页 %s 发现失败: %v", task.seed, err)
					continue
				}
				mu.Lock()
				set := perSource[task.src.ID]
				if set == nil {
					set = make(map[string]struct{})
					perSource[task.src.ID] = set
				}
				for _, link := range links {
					set[link] = struct{}{}
				}
				mu.Unlock()
			}
		}()
	}

	for _, task := range seeds {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()

	result := make(map[string][]string, len(perSource))
	for id, set := range perSource {
		links := make([]string, 0, len(set))
		for link := range set {
			links = append(links, link)
		}
		result[id] = links
	}
	return result
}

// discoverSeed 处理单个种子页,渲染失败时标记会话失效
func (o *Orchestrator) discoverSeed(task seedTask) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("发现任务panic: %v", r)
		}
	}()

	if !task.src.RequiresRender && o.static != nil {
		return o.discoverer.Discover(o.static, task.seed, task.src)
	}
	if o.pool == nil {
		return nil, fmt.Errorf("来源 %s 需要渲染会话,但会话池未初始化", task.src.ID)
	}

	session, err := o.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("检出会话失败: %w", err)
	}
	defer o.pool.Release(session)

	links, err = o.discoverer.Discover(session, task.seed, task.src)
	if err != nil {
		session.MarkBad()
		return nil, err
	}
	return links, nil
}

// extractAll 并发提取所有文章
// 结果通道按任务数预分配容量,批次超时后工作协程的迟到写入
// 不会阻塞,只是不再被收集
func (o *Orchestrator) extractAll(ctx context.Context, tasks []extractTask, stats *models.ScrapeStats, statsMu *sync.Mutex) []*models.Article {
	if len(tasks) == 0 {
		return nil
	}

	results := make(chan *models.Article, len(tasks))
	taskCh := make(chan extractTask)

	var bar interface{ Add(int) error }
	if o.cfg.ShowProgress {
		bar = utils.NewProgressBar(len(tasks), "提取文章")
	}

	var wg sync.WaitGroup
	for w := 0; w < o.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				if ctx.Err() != nil {
					statsMu.Lock()
					st := stats.PerSource[task.src.ID]
					st.Dropped++
					stats.PerSource[task.src.ID] = st
					stats.FailedURLs = append(stats.FailedURLs, task.url)
					statsMu.Unlock()
					continue
				}

				utils.Debugf("任务 %s: %s -> %s", task.url, models.TaskStatusPending, models.TaskStatusInFlight)
				article := o.extractWithRetry(task)

				status := models.TaskStatusSucceeded
				if article == nil {
					status = models.TaskStatusDropped
				}
				utils.Debugf("任务 %s 终态: %s", task.url, status)

				statsMu.Lock()
				st := stats.PerSource[task.src.ID]
				st.Attempted++
				if article != nil {
					st.Succeeded++
				} else {
					st.Dropped++
					stats.FailedURLs = append(stats.FailedURLs, task.url)
				}
				stats.PerSource[task.src.ID] = st
				statsMu.Unlock()

				if article != nil {
					results <- article
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	go func() {
		for _, task := range tasks {
			taskCh <- task
		}
		close(taskCh)
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		utils.Warnf("批次超时,停止等待未完成的任务")
	}

	// 只收集当前已送达的结果
	var articles []*models.Article
	for {
		select {
		case a := <-results:
			articles = append(articles, a)
		default:
			return articles
		}
	}
}

// extractWithRetry 提取单篇文章
// 渲染/导航失败经退避后用新检出的会话重试;提取成功
// 或正文不足(返回nil文章)都立即定论,不再重试
func (o *Orchestrator) extractWithRetry(task extractTask) *models.Article {
	attempts := 1 + o.cfg.Retries
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := o.backoff()
			utils.Debugf("文章 %s 第 %d 次重试, 退避 %v", task.url, attempt, wait)
			time.Sleep(wait)
		}

		article, err := o.tryExtract(task)
		if err != nil {
			utils.Debugf("文章 %s 提取失败(%s): %v", task.url, models.TaskStatusRetryable, err)
			continue
		}
		return article
	}

	utils.Warnf("文章 %s 重试耗尽,放弃", task.url)
	return nil
}

// tryExtract 单次提取尝试,渲染失败时标记会话失效
func (o *Orchestrator) tryExtract(task extractTask) (article *models.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("提取任务panic: %v", r)
		}
	}()

	if !task.src.RequiresRender && o.static != nil {
		return o.extractor.Extract(o.static, task.url, task.src)
	}
	if o.pool == nil {
		return nil, fmt.Errorf("来源 %s 需要渲染会话,但会话池未初始化", task.src.ID)
	}

	session, err := o.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("检出会话失败: %w", err)
	}
	defer o.pool.Release(session)

	article, err = o.extractor.Extract(session, task.url, task.src)
	if err != nil {
		session.MarkBad()
		return nil, err
	}
	return article, nil
}

// workers 实际工作协程数: min(配置并发数, 池容量)
// 纯静态来源的运行可以没有会话池
func (o *Orchestrator) workers() int {
	n := o.cfg.Parallelism
	if o.pool != nil {
		if size := o.pool.Size(); size < n {
			n = size
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}
