package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
)

// regionMapping 来源到地区的映射,用于BI工具中的地域维度
var regionMapping = map[string]string{
	"bbc":      "UK/Europe",
	"guardian": "UK/Europe",
	"ap":       "International",
	"cnn":      "North America",
	"reuters":  "International",
}

// browserSources 走浏览器渲染路径的来源
var browserSources = map[string]bool{
	"ap":      true,
	"cnn":     true,
	"reuters": true,
}

// Reporter 报告生成器
type Reporter struct {
	outputDir string
}

// NewReporter 创建报告生成器
func NewReporter(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

// SaveScrapeReport 保存批次报告和失败URL列表
func (r *Reporter) SaveScrapeReport(run *models.ScrapeRun) error {
	reportsDir := filepath.Join(r.outputDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	if err := r.saveJSONReport(reportsDir, "scrape_report.json", run); err != nil {
		return err
	}
	if err := r.saveJSONReport(reportsDir, "failed_urls.json", run.Stats.FailedURLs); err != nil {
		return err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	path := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// ExportCSV 导出BI友好的扁平CSV
// 附加情感五档分类、地区和采集方式三个维度列
func (r *Reporter) ExportCSV(articles []*models.Article, filename string) error {
	if len(articles) == 0 {
		return fmt.Errorf("没有可导出的文章")
	}

	exportDir := filepath.Join(r.outputDir, "exports")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return fmt.Errorf("创建导出目录失败: %w", err)
	}

	path := filepath.Join(exportDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建CSV文件失败: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"id", "title", "url", "source", "published_date", "author", "category",
		"sentiment_score", "sentiment_label", "sentiment_category",
		"keywords", "content_length", "word_count", "scraped_at",
		"region", "method_category",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}

	for _, a := range articles {
		method := "static"
		if browserSources[a.Source] {
			method = "browser"
		}
		record := []string{
			a.ID, a.Title, a.URL, a.Source, a.PublishedDate, a.Author, a.Category,
			strconv.FormatFloat(a.SentimentScore, 'f', 4, 64),
			a.SentimentLabel,
			SentimentCategory(a.SentimentScore),
			strings.Join(a.Keywords, ";"),
			strconv.Itoa(a.ContentLength),
			strconv.Itoa(a.WordCount),
			a.ScrapedAt,
			regionMapping[a.Source],
			method,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("写入CSV行失败: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("刷新CSV失败: %w", err)
	}

	Infof("✅ CSV已导出: %s (%d 行)", path, len(articles))
	return nil
}

// SentimentCategory 把情感分值映射为五档分类(导出/报告用)
func SentimentCategory(score float64) string {
	switch {
	case score >= 0.3:
		return "Very Positive"
	case score >= 0.1:
		return "Positive"
	case score >= -0.1:
		return "Neutral"
	case score >= -0.3:
		return "Negative"
	default:
		return "Very Negative"
	}
}

// marketClassification 市场整体情绪的五档分类,阈值比单篇分类更紧
func marketClassification(sentiment float64) string {
	switch {
	case sentiment >= 0.2:
		return "Very Positive"
	case sentiment >= 0.05:
		return "Positive"
	case sentiment >= -0.05:
		return "Neutral"
	case sentiment >= -0.2:
		return "Negative"
	default:
		return "Very Negative"
	}
}

// marketCategories 参与市场情绪汇总的文章类别
var marketCategories = map[string]bool{
	"business":   true,
	"technology": true,
	"world":      true,
}

// MarketReport 汇总市场相关类别的情感,生成文本报告
// 没有市场相关文章时返回空串
func MarketReport(articles []*models.Article) string {
	var market []*models.Article
	for _, a := range articles {
		if marketCategories[a.Category] {
			market = append(market, a)
		}
	}
	if len(market) == 0 {
		return ""
	}

	var total float64
	bySource := make(map[string][]float64)
	byCategory := make(map[string][]float64)
	for _, a := range market {
		total += a.SentimentScore
		bySource[a.Source] = append(bySource[a.Source], a.SentimentScore)
		byCategory[a.Category] = append(byCategory[a.Category], a.SentimentScore)
	}
	overall := total / float64(len(market))

	var sb strings.Builder
	sb.WriteString("======== 市场情绪报告 ========\n")
	sb.WriteString(fmt.Sprintf("整体市场情绪分值: %.3f\n", overall))
	sb.WriteString(fmt.Sprintf("分类: %s\n", marketClassification(overall)))
	sb.WriteString(fmt.Sprintf("分析文章数: %d\n", len(market)))

	sb.WriteString("按来源:\n")
	for source, scores := range bySource {
		method := "static"
		if browserSources[source] {
			method = "browser"
		}
		sb.WriteString(fmt.Sprintf("   %s (%s): %.3f (%d 篇)\n",
			strings.ToUpper(source), method, mean(scores), len(scores)))
	}

	sb.WriteString("按类别:\n")
	for category, scores := range byCategory {
		sb.WriteString(fmt.Sprintf("   %s: %.3f (%d 篇)\n", category, mean(scores), len(scores)))
	}

	switch {
	case overall >= 0.1:
		sb.WriteString("解读: 市场情绪明显偏多。\n")
	case overall <= -0.1:
		sb.WriteString("解读: 市场情绪明显偏空。\n")
	default:
		sb.WriteString("解读: 市场情绪中性。\n")
	}

	return sb.String()
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
