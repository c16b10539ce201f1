package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sources"
)

// Renderer 页面渲染抽象
// 浏览器会话和静态抓取器都实现该接口,发现和提取逻辑对路径无感知
type Renderer interface {
	Render(url string, timeout time.Duration) (string, error)
}

// Discoverer 从来源首页发现文章链接
type Discoverer struct {
	pageTimeout time.Duration
	minLinks    int // 低于此值时启用通用回退选择器
	maxLinks    int // 单个种子页的链接上限
}

// NewDiscoverer 创建链接发现器
func NewDiscoverer(pageTimeout time.Duration, minLinks, maxLinks int) *Discoverer {
	if minLinks <= 0 {
		minLinks = 5
	}
	if maxLinks <= 0 {
		maxLinks = 50
	}
	return &Discoverer{
		pageTimeout: pageTimeout,
		minLinks:    minLinks,
		maxLinks:    maxLinks,
	}
}

// Discover 渲染种子页并按候选选择器提取文章链接
// 候选选择器按顺序尝试,第一个有命中的生效;结果不足时
// 合并通用回退选择器补充。发现结果为空不是错误
func (d *Discoverer) Discover(r Renderer, seedURL string, src *sources.Entry) ([]string, error) {
	html, err := r.Render(seedURL, d.pageTimeout)
	if err != nil {
		return nil, fmt.Errorf("渲染种子页失败: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("解析种子页失败: %w", err)
	}

	links := make(map[string]struct{})

	for _, selector := range src.LinkSelectors {
		sel := trySelect(doc, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		d.collect(sel, src, links, 0)
		break
	}

	if len(links) < d.minLinks {
		log.Debug().Msgf("来源 %s 主选择器仅发现 %d 个链接,启用回退选择器", src.ID, len(links))
		for _, selector := range sources.FallbackLinkSelectors {
			sel := trySelect(doc, selector)
			if sel == nil {
				continue
			}
			d.collect(sel, src, links, 20)
			if len(links) >= 2*d.minLinks {
				break
			}
		}
	}

	out := make([]string, 0, len(links))
	for link := range links {
		out = append(out, link)
		if len(out) >= d.maxLinks {
			break
		}
	}

	log.Debug().Msgf("来源 %s 种子页 %s 发现 %d 个链接", src.ID, seedURL, len(out))
	return out, nil
}

// collect 收集selection中通过有效性检查的链接
// limit>0时只看前limit个元素
func (d *Discoverer) collect(sel *goquery.Selection, src *sources.Entry, links map[string]struct{}, limit int) {
	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if limit > 0 && i >= limit {
			return false
		}
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if !sources.AllowURL(href) {
			return true
		}
		links[src.ResolveURL(href)] = struct{}{}
		return true
	})
}

// trySelect 执行选择器查询
// 候选表里允许存在个别站点改版后失效的选择器,
// 选择器语法错误按"未命中"处理而不是让整个任务崩溃
func trySelect(doc *goquery.Document, selector string) (sel *goquery.Selection) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Msgf("选择器 %q 无效: %v", selector, r)
			sel = nil
		}
	}()
	return doc.Find(selector)
}
