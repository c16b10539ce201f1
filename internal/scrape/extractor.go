package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sources"
)

// 提取阈值
// 新闻站点的正文选择器命中率参差,这些阈值决定了
// 什么样的提取结果算"一篇文章"
const (
	maxTitleSelectors   = 3
	maxContentSelectors = 4
	maxAuthorSelectors  = 2
	maxDateSelectors    = 2

	maxContentElements = 10  // 每个选择器最多取前N个元素
	minPartLength      = 20  // 正文片段的最小长度
	minFallbackLength  = 10  // 兜底提取时放宽的片段长度
	minParts           = 3   // 集齐N个片段即停止
	minContentLength   = 100 // 低于该长度视为无正文
)

// Extractor 文章内容提取器
// 对每个字段按候选选择器顺序尝试,全部未命中时使用默认值;
// 只有正文不足会导致文章被放弃
type Extractor struct {
	pageTimeout time.Duration
}

// NewExtractor 创建内容提取器
func NewExtractor(pageTimeout time.Duration) *Extractor {
	return &Extractor{pageTimeout: pageTimeout}
}

// Extract 渲染文章页并提取各字段
// 正文不足minContentLength时返回(nil, nil): 页面本身正常,
// 只是没有可用正文,不应触发重试
func (e *Extractor) Extract(r Renderer, url string, src *sources.Entry) (*models.Article, error) {
	html, err := r.Render(url, e.pageTimeout)
	if err != nil {
		return nil, fmt.Errorf("渲染文章页失败: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("解析文章页失败: %w", err)
	}

	content := e.extractContent(doc, src.ContentSelectors)
	if len(content) < minContentLength {
		log.Debug().Msgf("文章正文不足,跳过: %s (长度=%d)", url, len(content))
		return nil, nil
	}

	title := firstText(doc, src.TitleSelectors, maxTitleSelectors)
	if title == "" {
		title = "No title"
	}

	author := firstText(doc, src.AuthorSelectors, maxAuthorSelectors)
	if author == "" {
		author = "Unknown"
	}

	published := extractDate(doc, src.DateSelectors)

	return models.NewArticle(title, content, url, src.ID, published, author), nil
}

// extractContent 按候选选择器收集正文片段
// 片段跨选择器累积,集齐minParts个即停;常规路径产出不足时
// 用放宽的阈值做一次兜底遍历
func (e *Extractor) extractContent(doc *goquery.Document, selectors []string) string {
	var parts []string

	for i, selector := range selectors {
		if i >= maxContentSelectors {
			break
		}
		sel := trySelect(doc, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		sel.EachWithBreak(func(j int, s *goquery.Selection) bool {
			if j >= maxContentElements {
				return false
			}
			text := strings.TrimSpace(s.Text())
			if len(text) > minPartLength {
				parts = append(parts, text)
			}
			return true
		})
		if len(parts) >= minParts {
			break
		}
	}

	content := strings.Join(parts, " ")
	if len(content) < minContentLength {
		if fallback := exhaustiveText(doc, selectors); fallback != "" {
			content = fallback
		}
	}
	return content
}

// exhaustiveText 兜底提取: 遍历全部候选选择器,
// 取第一个能产出任何片段的,片段长度阈值放宽
func exhaustiveText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := trySelect(doc, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		var parts []string
		sel.Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > minFallbackLength {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

// firstText 按顺序尝试前limit个选择器,返回第一个非空文本
func firstText(doc *goquery.Document, selectors []string, limit int) string {
	for i, selector := range selectors {
		if i >= limit {
			break
		}
		sel := trySelect(doc, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(sel.First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractDate 提取发布时间
// <time datetime="...">的机器可读属性优先于元素文本;
// 全部未命中时以当前时间兜底
func extractDate(doc *goquery.Document, selectors []string) string {
	for i, selector := range selectors {
		if i >= maxDateSelectors {
			break
		}
		sel := trySelect(doc, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		first := sel.First()
		if dt, ok := first.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			return strings.TrimSpace(dt)
		}
		if text := strings.TrimSpace(first.Text()); text != "" {
			return text
		}
	}
	return time.Now().Format(models.TimeLayout)
}
