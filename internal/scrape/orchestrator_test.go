package scrape

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sources"
)

// fakePoolSession 测试用池会话,渲染委托给共享的fakeRenderer
type fakePoolSession struct {
	renderer *fakeRenderer
	pool     *fakePool
}

func (s *fakePoolSession) Render(url string, timeout time.Duration) (string, error) {
	return s.renderer.Render(url, timeout)
}

func (s *fakePoolSession) MarkBad() {
	s.pool.mu.Lock()
	s.pool.marked++
	s.pool.mu.Unlock()
}

// fakePool 记录检出次数的会话池
type fakePool struct {
	mu        sync.Mutex
	renderer  *fakeRenderer
	size      int
	checkouts int
	marked    int
}

func (p *fakePool) Acquire() (Session, error) {
	p.mu.Lock()
	p.checkouts++
	p.mu.Unlock()
	return &fakePoolSession{renderer: p.renderer, pool: p}, nil
}

func (p *fakePool) Release(Session) {}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) totals() (checkouts, marked int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checkouts, p.marked
}

// seedPage 生成带文章链接的种子页HTML
func seedPage(hrefs ...string) string {
	html := `<html><body>`
	for _, href := range hrefs {
		html += `<h3><a href="` + href + `">headline</a></h3>`
	}
	return html + `</body></html>`
}

func newTestOrchestrator(pool SessionPool, static Renderer, cfg Config) *Orchestrator {
	o := NewOrchestrator(pool, static, cfg)
	o.backoff = func() time.Duration { return time.Millisecond }
	return o
}

func TestOrchestrator_MergeDedupeCap(t *testing.T) {
	entry := testEntry()
	entry.SeedURLs = []string{
		"https://news.example.com/world",
		"https://news.example.com/business",
		"https://news.example.com/tech",
	}

	// 三个种子页: {A,B,C}, {B,C,D}, {} → 合并去重后4个,上限3
	pages := map[string]string{
		"https://news.example.com/world":    seedPage("/news/articles/a", "/news/articles/b", "/news/articles/c"),
		"https://news.example.com/business": seedPage("/news/articles/b", "/news/articles/c", "/news/articles/d"),
		"https://news.example.com/tech":     seedPage(),
	}
	for _, name := range []string{"a", "b", "c", "d"} {
		pages["https://news.example.com/news/articles/"+name] = fullArticleHTML
	}

	renderer := newFakeRenderer(pages)
	pool := &fakePool{renderer: renderer, size: 2}

	o := newTestOrchestrator(pool, nil, Config{
		Parallelism:  4,
		MaxPerSource: 3,
		MinLinks:     1,
		PageTimeout:  5 * time.Second,
	})

	result, err := o.Run(context.Background(), []*sources.Entry{entry})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.TotalLinks != 3 {
		t.Errorf("TotalLinks = %d, want 3 (4个去重链接被上限截断)", result.Stats.TotalLinks)
	}
	if len(result.Articles) != 3 {
		t.Errorf("文章数 = %d, want 3", len(result.Articles))
	}

	st := result.Stats.PerSource["testwire"]
	if st.LinksFound != 3 || st.Attempted != 3 || st.Succeeded != 3 {
		t.Errorf("来源统计 = %+v", st)
	}

	// 同一URL不应被提取两次
	seen := make(map[string]bool)
	for _, a := range result.Articles {
		if seen[a.URL] {
			t.Errorf("文章 %s 被重复提取", a.URL)
		}
		seen[a.URL] = true
	}
}

func TestOrchestrator_RetryUsesFreshSession(t *testing.T) {
	entry := testEntry()

	target := "https://news.example.com/news/articles/a"
	renderer := newFakeRenderer(map[string]string{
		"https://news.example.com/world": seedPage("/news/articles/a"),
		target:                           fullArticleHTML,
	})
	renderer.failures[target] = 1 // 首次提取导航失败

	pool := &fakePool{renderer: renderer, size: 2}
	o := newTestOrchestrator(pool, nil, Config{
		Parallelism:  2,
		MaxPerSource: 5,
		MinLinks:     1,
		Retries:      1,
		PageTimeout:  5 * time.Second,
	})

	result, err := o.Run(context.Background(), []*sources.Entry{entry})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Articles) != 1 {
		t.Fatalf("文章数 = %d, want 1 (重试后应成功)", len(result.Articles))
	}

	// 发现1次 + 失败的提取1次 + 重试1次 = 3次检出
	checkouts, marked := pool.totals()
	if checkouts != 3 {
		t.Errorf("检出次数 = %d, want 3", checkouts)
	}
	if marked != 1 {
		t.Errorf("失效标记次数 = %d, want 1 (失败的会话应被标记)", marked)
	}
	if renderer.rendersOf(target) != 2 {
		t.Errorf("目标页渲染次数 = %d, want 2", renderer.rendersOf(target))
	}
}

func TestOrchestrator_AbsentArticleNotRetried(t *testing.T) {
	entry := testEntry()

	target := "https://news.example.com/news/articles/a"
	renderer := newFakeRenderer(map[string]string{
		"https://news.example.com/world": seedPage("/news/articles/a"),
		// 页面正常但正文不足: 不算瞬时失败,不应重试
		target: `<html><body><h1>Title</h1><div class="story"><p>Too short.</p></div></body></html>`,
	})

	pool := &fakePool{renderer: renderer, size: 2}
	o := newTestOrchestrator(pool, nil, Config{
		Parallelism:  2,
		MaxPerSource: 5,
		MinLinks:     1,
		Retries:      2,
		PageTimeout:  5 * time.Second,
	})

	result, err := o.Run(context.Background(), []*sources.Entry{entry})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Articles) != 0 {
		t.Errorf("文章数 = %d, want 0", len(result.Articles))
	}
	if renderer.rendersOf(target) != 1 {
		t.Errorf("目标页渲染次数 = %d, want 1 (正文不足不应重试)", renderer.rendersOf(target))
	}

	st := result.Stats.PerSource["testwire"]
	if st.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", st.Dropped)
	}
	if len(result.Stats.FailedURLs) != 1 {
		t.Errorf("FailedURLs = %v", result.Stats.FailedURLs)
	}
}

func TestOrchestrator_StaticPathSkipsPool(t *testing.T) {
	entry := testEntry()
	entry.RequiresRender = false

	renderer := newFakeRenderer(map[string]string{
		"https://news.example.com/world":          seedPage("/news/articles/a"),
		"https://news.example.com/news/articles/a": fullArticleHTML,
	})

	pool := &fakePool{renderer: newFakeRenderer(nil), size: 2}
	o := newTestOrchestrator(pool, renderer, Config{
		Parallelism:  2,
		MaxPerSource: 5,
		MinLinks:     1,
		PageTimeout:  5 * time.Second,
	})

	result, err := o.Run(context.Background(), []*sources.Entry{entry})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Articles) != 1 {
		t.Fatalf("文章数 = %d, want 1", len(result.Articles))
	}
	checkouts, _ := pool.totals()
	if checkouts != 0 {
		t.Errorf("静态来源不应检出浏览器会话, 检出次数 = %d", checkouts)
	}
}

func TestOrchestrator_BatchTimeout(t *testing.T) {
	entry := testEntry()

	pages := map[string]string{
		"https://news.example.com/world": seedPage("/news/articles/a", "/news/articles/b"),
	}
	for _, name := range []string{"a", "b"} {
		pages["https://news.example.com/news/articles/"+name] = fullArticleHTML
	}

	renderer := newFakeRenderer(pages)
	renderer.delay = 300 * time.Millisecond // 每次渲染都比批次时限慢

	pool := &fakePool{renderer: renderer, size: 1}
	o := newTestOrchestrator(pool, nil, Config{
		Parallelism:  1,
		MaxPerSource: 5,
		MinLinks:     1,
		PageTimeout:  5 * time.Second,
		BatchTimeout: 150 * time.Millisecond,
	})

	start := time.Now()
	result, err := o.Run(context.Background(), []*sources.Entry{entry})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("批次超时后Run未及时返回, 耗时 %v", elapsed)
	}
	if !result.Stats.TimedOut {
		t.Error("Stats.TimedOut应为true")
	}
	// 已完成的结果照常返回,未完成的被丢弃,总数不应超过任务数
	if len(result.Articles) > result.Stats.TotalLinks {
		t.Errorf("文章数 = %d 超过任务数 %d", len(result.Articles), result.Stats.TotalLinks)
	}
}
