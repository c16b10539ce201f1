// Package sources 定义发布商目录: 每个发布商的种子URL、各字段的
// 选择器候选列表和URL有效性规则。目录在启动时构建一次,之后只读。
package sources

import (
	"fmt"
	"strings"
)

// Entry 单个发布商的不可变配置
type Entry struct {
	// ID 发布商标识 (bbc/guardian/ap/cnn/reuters)
	ID string

	// BaseURL 相对链接的拼接前缀
	BaseURL string

	// SeedURLs 链接发现的入口页面(版块/栏目列表页)
	SeedURLs []string

	// 各字段的选择器候选列表,按优先级排列,逐个尝试直到命中
	LinkSelectors    []string
	TitleSelectors   []string
	ContentSelectors []string
	DateSelectors    []string
	AuthorSelectors  []string

	// RequiresRender 页面内容依赖JS渲染,需要浏览器会话;
	// 为false的来源走静态抓取路径
	RequiresRender bool
}

// ResolveURL 按来源的拼接规则把相对href还原为完整URL
func (e *Entry) ResolveURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return e.BaseURL + href
	}
	return href
}

// Catalog 发布商目录
type Catalog map[string]*Entry

// Get 按ID查找来源
func (c Catalog) Get(id string) (*Entry, bool) {
	entry, ok := c[id]
	return entry, ok
}

// IDs 返回全部来源ID
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

// Filter 返回指定子集,空子集返回全部
func (c Catalog) Filter(ids []string) (Catalog, error) {
	if len(ids) == 0 {
		return c, nil
	}
	filtered := make(Catalog, len(ids))
	for _, id := range ids {
		entry, ok := c[id]
		if !ok {
			return nil, fmt.Errorf("未知的来源: %s", id)
		}
		filtered[id] = entry
	}
	return filtered, nil
}

// Entries 返回全部来源配置
func (c Catalog) Entries() []*Entry {
	entries := make([]*Entry, 0, len(c))
	for _, entry := range c {
		entries = append(entries, entry)
	}
	return entries
}

// FallbackLinkSelectors 通用回退选择器
// 来源自身的选择器命中过少时合并使用,用于应对发布商改版
var FallbackLinkSelectors = []string{
	`a[href*="2025"]`,
	`a[href*="2024"]`,
	`article a`,
	`.article a`,
	`h3 a`,
	`h2 a`,
	`h1 a`,
	`.headline a`,
	`.title a`,
	`.story a`,
	`.card a`,
	`.link a`,
	`a[href*="/news/"]`,
	`a[href*="/article/"]`,
	`a[href*="/story/"]`,
}

// DefaultCatalog 构建内置的五个发布商目录
func DefaultCatalog() Catalog {
	return Catalog{
		"bbc": {
			ID:      "bbc",
			BaseURL: "https://www.bbc.com",
			SeedURLs: []string{
				"https://www.bbc.com/news",
				"https://www.bbc.com/news/world",
				"https://www.bbc.com/news/business",
				"https://www.bbc.com/news/technology",
				"https://www.bbc.com/news/politics",
				"https://www.bbc.com/news/health",
			},
			LinkSelectors: []string{
				`a[data-testid="internal-link"]`,
				`a[href*="/news/"]`,
				`h3 a`,
				`.media__link`,
				`.gs-c-promo-heading a`,
				`.gel-layout a`,
				`a[href*="2025"]`,
				`a[href*="2024"]`,
				`.nw-c-promo a`,
				`.gs-c-promo a`,
				`.media-list__item a`,
				`[data-testid="card-headline"] a`,
				`.block-link a`,
				`.media a`,
				`.promo a`,
				`.story-promo a`,
			},
			TitleSelectors: []string{
				`h1[data-testid="headline"]`,
				`h1`,
				`.story-body__h1`,
				`.headline`,
				`.article-headline__text`,
			},
			ContentSelectors: []string{
				`[data-component="text-block"] p`,
				`.story-body__inner p`,
				`.gel-body-copy`,
				`article p`,
				`.story-body p`,
				`.rich-text p`,
			},
			DateSelectors: []string{
				`time[datetime]`,
				`[data-testid="timestamp"]`,
				`.date`,
				`time`,
			},
			AuthorSelectors: []string{
				`[data-testid="byline-name"]`,
				`.byline__name`,
				`[rel="author"]`,
				`.story-body__byline`,
				`.author`,
			},
			RequiresRender: false,
		},
		"guardian": {
			ID:      "guardian",
			BaseURL: "https://www.theguardian.com",
			SeedURLs: []string{
				"https://www.theguardian.com/world",
				"https://www.theguardian.com/business",
				"https://www.theguardian.com/technology",
				"https://www.theguardian.com/international",
				"https://www.theguardian.com/uk-news",
				"https://www.theguardian.com/politics",
			},
			LinkSelectors: []string{
				`a[data-link-name="article"]`,
				`a[href*="/2025/"]`,
				`a[href*="/2024/"]`,
				`.fc-item__link`,
				`.u-faux-block-link__overlay`,
				`h3 a`,
				`.headline a`,
				`.fc-item a`,
				`.content__headline a`,
				`a[data-component="GuardianLines"]`,
				`.dcr-lv2v9o a`,
				`article a`,
				`a[href*="/commentisfree/"]`,
				`a[href*="theguardian.com/"]`,
			},
			TitleSelectors: []string{
				`h1[data-gu-name="headline"]`,
				`h1`,
				`.content__headline`,
				`.article-header h1`,
			},
			ContentSelectors: []string{
				`.content__article-body p`,
				`.article-body p`,
				`#maincontent p`,
				`.content__main p`,
				`article p`,
			},
			DateSelectors: []string{
				`time[datetime]`,
				`.content__dateline time`,
				`.timestamp`,
				`time`,
			},
			AuthorSelectors: []string{
				`[data-component="meta-byline"] a`,
				`.byline a`,
				`.content__meta-container .contributor-full`,
				`.author-name`,
			},
			RequiresRender: false,
		},
		"ap": {
			ID:      "ap",
			BaseURL: "https://apnews.com",
			SeedURLs: []string{
				"https://apnews.com",
				"https://apnews.com/hub/world-news",
				"https://apnews.com/hub/business",
				"https://apnews.com/hub/technology",
				"https://apnews.com/world-news",
			},
			LinkSelectors: []string{
				`a[href*="/article/"]`,
				`a[data-key="card-headline"]`,
				`.Component-headline a`,
				`h3 a`,
				`.PagePromo-title a`,
				`.CardHeadline a`,
				`a[href*="/hub/"]`,
				`.Link a`,
				`article a`,
			},
			TitleSelectors: []string{
				`h1[data-key="card-headline"]`,
				`h1`,
				`.Page-headline`,
				`.Article-headline`,
				`.PagePromo-title`,
			},
			ContentSelectors: []string{
				`.RichTextStoryBody p`,
				`.Article p`,
				`div[data-key="article"] p`,
				`.main p`,
				`article p`,
				`.story-body p`,
			},
			DateSelectors: []string{
				`bsp-timestamp`,
				`time[data-source="ap"]`,
				`.Timestamp`,
				`time`,
				`[data-key="timestamp"]`,
			},
			AuthorSelectors: []string{
				`.Component-bylines`,
				`[data-key="byline"]`,
				`.Byline`,
				`.byline`,
			},
			RequiresRender: true,
		},
		"cnn": {
			ID:      "cnn",
			BaseURL: "https://edition.cnn.com",
			SeedURLs: []string{
				"https://www.cnn.com/world",
				"https://www.cnn.com/business",
				"https://www.cnn.com/tech",
				"https://www.cnn.com",
				"https://edition.cnn.com",
				"https://www.cnn.com/politics",
			},
			LinkSelectors: []string{
				`a[href*="/2025/"]`,
				`a[href*="/2024/"]`,
				`a[data-link-type="article"]`,
				`.container__link`,
				`h3 a`,
				`.cd__headline-text a`,
				`.card a`,
				`.headline a`,
				`article a`,
				`.zone a[href*="/20"]`,
				`a[data-zjs*="headline"]`,
				`.cd__content a`,
				`.layout__wrapper a`,
				`.card-media a`,
				`.story a`,
				`a[href*="/index.html"]`,
				`a[href*="cnn.com"]`,
			},
			TitleSelectors: []string{
				`h1[data-editable="headlineText"]`,
				`h1`,
				`.headline__text`,
				`.pg-headline`,
				`[data-zn-id="headline"]`,
				`.Article__title`,
			},
			ContentSelectors: []string{
				`.zn-body__paragraph`,
				`p[data-zn-id="paragraph"]`,
				`.l-container p`,
				`.pg-body p`,
				`.BasicArticle__main p`,
				`.Article__content p`,
				`div[data-zn-id="paragraph"]`,
				`.wysiwyg p`,
				`article p`,
				`.body-text p`,
			},
			DateSelectors: []string{
				`.timestamp`,
				`time`,
				`.metadata__date`,
				`[data-zn-id="timestamp"]`,
			},
			AuthorSelectors: []string{
				`.byline__names`,
				`.metadata__byline`,
				`.BasicArticle__byline`,
				`[data-zn-id="byline"]`,
			},
			RequiresRender: true,
		},
		"reuters": {
			ID:      "reuters",
			BaseURL: "https://www.reuters.com",
			SeedURLs: []string{
				"https://www.reuters.com/world/",
				"https://www.reuters.com/business/",
				"https://www.reuters.com/technology/",
				"https://www.reuters.com/markets/",
				"https://www.reuters.com/legal/",
				"https://www.reuters.com/breakingviews/",
				"https://www.reuters.com/business/finance/",
				"https://www.reuters.com/business/energy/",
				"https://www.reuters.com/world/americas/",
				"https://www.reuters.com/world/europe/",
				"https://www.reuters.com/world/asia-pacific/",
				"https://www.reuters.com/world/middle-east/",
				"https://www.reuters.com/world/africa/",
				"https://www.reuters.com",
				"https://www.reuters.com/news/archive",
			},
			LinkSelectors: []string{
				`a[data-testid="Heading"]`,
				`a[data-testid="Body"]`,
				`a[href*="/world/"]`,
				`a[href*="/business/"]`,
				`a[href*="/technology/"]`,
				`a[href*="/markets/"]`,
				`a[href*="/legal/"]`,
				`a[href*="/breakingviews/"]`,
				`h3 a`,
				`h2 a`,
				`.story-title a`,
				`.media-story-card__headline a`,
				`.story-card a`,
				`article a`,
				`a[href*="/news/"]`,
				`a[data-module="ArticleLink"]`,
				`.text__text a`,
				`a[href*="reuters.com/"]`,
				`a[data-testid*="Link"]`,
				`.story a`,
				`.headline a`,
				`.card a`,
				`a[href*="/2025/"]`,
				`a[href*="/2024/"]`,
				`.article-card a`,
				`.content a`,
				`[data-testid*="story-card"] a`,
				`.story-collection a`,
				`.item a`,
				`.news-headline a`,
				`.topic-container a`,
				`[data-testid="Card"] a`,
			},
			TitleSelectors: []string{
				`h1[data-testid="Heading"]`,
				`h1[data-testid="ArticleHeader:headline"]`,
				`h1`,
				`.ArticleHeader_headline`,
				`.headline`,
				`.title`,
				`header h1`,
				`[data-testid*="headline"]`,
			},
			ContentSelectors: []string{
				`[data-testid="paragraph-0"]`,
				`[data-testid="paragraph-1"]`,
				`[data-testid="paragraph-2"]`,
				`[data-testid="paragraph-3"]`,
				`[data-testid="paragraph-4"]`,
				`p[data-testid*="paragraph"]`,
				`.ArticleBody_container p`,
				`article p`,
				`.content p`,
				`.body p`,
				`.text p`,
				`[data-testid="ArticleBody"] p`,
				`.story-body p`,
				`.article-content p`,
			},
			DateSelectors: []string{
				`time[datetime]`,
				`[data-testid="ArticleHeader:dateTime"]`,
				`.ArticleHeader_date`,
				`.timestamp`,
				`.date`,
				`time`,
			},
			AuthorSelectors: []string{
				`[data-testid="AuthorByline"]`,
				`.ArticleHeader_author`,
				`.byline`,
				`.author`,
				`[data-testid*="author"]`,
			},
			RequiresRender: true,
		},
	}
}
