package models

import (
	"strings"
	"time"
)

// SentimentLabel 情感标签
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Article 一篇已提取的新闻文章
// 由内容提取器创建,返回后不再修改正文字段;
// 编排器只追加富化字段(分类/情感/关键词)后交给存储层
type Article struct {
	ID             string   `json:"id"`              // 记录唯一ID (UUID)
	Title          string   `json:"title"`           // 标题
	Content        string   `json:"content"`         // 正文
	URL            string   `json:"url"`             // 文章URL (唯一键)
	Source         string   `json:"source"`          // 来源发布商ID
	PublishedDate  string   `json:"published_date"`  // 发布日期(原样字符串,无法解析时为抓取时间)
	Author         string   `json:"author"`          // 作者
	Category       string   `json:"category"`        // 分类 (富化字段)
	SentimentScore float64  `json:"sentiment_score"` // 情感分值 (富化字段)
	SentimentLabel string   `json:"sentiment_label"` // 情感标签 (富化字段)
	Keywords       []string `json:"keywords"`        // 关键词 (富化字段)
	ContentLength  int      `json:"content_length"`  // 正文字符数
	WordCount      int      `json:"word_count"`      // 正文词数
	ScrapedAt      string   `json:"scraped_at"`      // 抓取时间 (格式: 2006-01-02 15:04:05)
}

// NewArticle 创建文章记录并计算派生字段
func NewArticle(title, content, url, source, publishedDate, author string) *Article {
	return &Article{
		ID:             generateID(),
		Title:          title,
		Content:        content,
		URL:            url,
		Source:         source,
		PublishedDate:  publishedDate,
		Author:         author,
		SentimentLabel: SentimentNeutral,
		ContentLength:  len(content),
		WordCount:      len(strings.Fields(content)),
		ScrapedAt:      time.Now().Format(TimeLayout),
	}
}

// TimeLayout 数据库与报告中使用的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// CandidateLink 链接发现阶段产出的候选文章链接
type CandidateLink struct {
	// URL 完整的文章URL
	URL string

	// Source 发现此链接的发布商ID
	Source string
}
