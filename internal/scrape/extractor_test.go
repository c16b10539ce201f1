package scrape

import (
	"strings"
	"testing"
	"time"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
)

const articleURL = "https://news.example.com/news/articles/alpha"

// fullArticleHTML 字段齐全的文章页
const fullArticleHTML = `<html><body>
	<h1>Markets rally as central banks signal rate cuts ahead</h1>
	<div class="byline">Jane Smith</div>
	<time datetime="2025-08-20T10:30:00Z">20 August 2025</time>
	<div class="story">
		<p>Global stock markets climbed sharply on Wednesday after policymakers hinted at easing.</p>
		<p>Investors welcomed the shift in tone, pushing major indices to their highest levels this year.</p>
		<p>Analysts cautioned that inflation data due next week could still change the picture quickly.</p>
	</div>
</body></html>`

func TestExtractor_FullArticle(t *testing.T) {
	entry := testEntry()
	r := newFakeRenderer(map[string]string{articleURL: fullArticleHTML})
	e := NewExtractor(5 * time.Second)

	article, err := e.Extract(r, articleURL, entry)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if article == nil {
		t.Fatal("字段齐全的页面应产出文章")
	}

	if article.Title != "Markets rally as central banks signal rate cuts ahead" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.Author != "Jane Smith" {
		t.Errorf("Author = %q, want Jane Smith", article.Author)
	}
	if article.PublishedDate != "2025-08-20T10:30:00Z" {
		t.Errorf("PublishedDate = %q, datetime属性应优先于元素文本", article.PublishedDate)
	}
	if article.Source != "testwire" {
		t.Errorf("Source = %q", article.Source)
	}
	if !strings.Contains(article.Content, "Global stock markets climbed") {
		t.Errorf("正文缺少段落: %q", article.Content)
	}
	if article.WordCount == 0 || article.ContentLength != len(article.Content) {
		t.Errorf("派生字段错误: words=%d length=%d", article.WordCount, article.ContentLength)
	}
}

func TestExtractor_LaterCandidateSelectors(t *testing.T) {
	entry := testEntry()
	// 每个字段的前几个候选都不命中,靠后的候选生效
	entry.TitleSelectors = []string{`.legacy-h1`, `.old-headline`, `h1`}
	entry.ContentSelectors = []string{`.legacy-body p`, `.story p`}
	entry.AuthorSelectors = []string{`.legacy-byline`, `.byline`}

	r := newFakeRenderer(map[string]string{articleURL: fullArticleHTML})
	e := NewExtractor(5 * time.Second)

	article, err := e.Extract(r, articleURL, entry)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if article == nil {
		t.Fatal("靠后的候选选择器命中时应产出文章")
	}
	if article.Title == "No title" {
		t.Error("标题应由第三个候选选择器提取")
	}
	if article.Author != "Jane Smith" {
		t.Errorf("Author = %q", article.Author)
	}
}

func TestExtractor_InsufficientContentIsAbsent(t *testing.T) {
	entry := testEntry()
	r := newFakeRenderer(map[string]string{
		articleURL: `<html><body><h1>Title</h1><div class="story"><p>Too short.</p></div></body></html>`,
	})
	e := NewExtractor(5 * time.Second)

	article, err := e.Extract(r, articleURL, entry)
	if err != nil {
		t.Fatalf("正文不足不是错误: %v", err)
	}
	if article != nil {
		t.Error("正文不足的页面应返回nil文章")
	}
}

func TestExtractor_Defaults(t *testing.T) {
	entry := testEntry()
	// 只有正文命中,标题/作者/日期全部未命中
	html := `<html><body><div class="story">
		<p>First paragraph with enough characters to count as body text.</p>
		<p>Second paragraph also long enough to pass the length threshold.</p>
		<p>Third paragraph rounding out the body so the gate is satisfied.</p>
	</div></body></html>`

	r := newFakeRenderer(map[string]string{articleURL: html})
	e := NewExtractor(5 * time.Second)

	article, err := e.Extract(r, articleURL, entry)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if article == nil {
		t.Fatal("正文充足时应产出文章")
	}

	if article.Title != "No title" {
		t.Errorf("Title = %q, want No title", article.Title)
	}
	if article.Author != "Unknown" {
		t.Errorf("Author = %q, want Unknown", article.Author)
	}
	if _, err := time.Parse(models.TimeLayout, article.PublishedDate); err != nil {
		t.Errorf("日期未命中时应以当前时间兜底: %q", article.PublishedDate)
	}
}

func TestExtractor_FallbackContentPath(t *testing.T) {
	entry := testEntry()
	// 段落都短于常规阈值但长于兜底阈值,常规路径产出不足,
	// 兜底遍历应把它们拼成正文
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="story">`)
	for i := 0; i < 10; i++ {
		sb.WriteString(`<p>Short brief line.</p>`)
	}
	sb.WriteString(`</div></body></html>`)

	r := newFakeRenderer(map[string]string{articleURL: sb.String()})
	e := NewExtractor(5 * time.Second)

	article, err := e.Extract(r, articleURL, entry)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if article == nil {
		t.Fatal("兜底提取应挽救该页面")
	}
	if len(article.Content) < minContentLength {
		t.Errorf("正文长度 = %d, want >= %d", len(article.Content), minContentLength)
	}
}

func TestExtractor_RenderErrorPropagates(t *testing.T) {
	entry := testEntry()
	r := newFakeRenderer(nil)
	r.failures[articleURL] = 1

	e := NewExtractor(5 * time.Second)
	if _, err := e.Extract(r, articleURL, entry); err == nil {
		t.Error("渲染失败应返回错误")
	}
}
