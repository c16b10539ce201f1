// Package sentiment 提供轻量的词典法情感分析、关键词提取和主题分类。
// 不依赖外部模型,词典面向财经/新闻语料。
package sentiment

import (
	"sort"
	"strings"
	"unicode"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
)

var positiveWords = wordSet(
	"good", "great", "excellent", "amazing", "wonderful", "fantastic", "positive",
	"success", "win", "growth", "increase", "rise", "gain", "improve", "better",
	"strong", "confident", "optimistic", "breakthrough", "achievement", "boost",
	"surge", "soar", "rally", "expand", "advance", "progress", "victory",
)

var negativeWords = wordSet(
	"bad", "terrible", "awful", "horrible", "negative", "fail", "failure",
	"decline", "decrease", "fall", "drop", "loss", "worse", "crisis",
	"problem", "issue", "concern", "worry", "pessimistic", "disaster",
	"crash", "plunge", "tumble", "collapse", "threat", "risk", "danger",
)

var stopWords = wordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at",
	"to", "for", "of", "with", "by", "from", "this", "that",
	"was", "were", "been", "have", "has", "had", "will", "would",
	"said", "says", "also", "more", "their", "they", "there",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Analyzer 词典法情感分析器
// 无状态,可被多个协程并发使用
type Analyzer struct{}

// NewAnalyzer 创建分析器
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Score 计算文本的情感复合分值,范围[-1, 1]
// 分值 = (正面词数 - 负面词数) / 总词数 × 2,截断到区间内
func (a *Analyzer) Score(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	var positive, negative int
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			positive++
		}
		if _, ok := negativeWords[w]; ok {
			negative++
		}
	}

	compound := float64(positive-negative) / float64(len(words)) * 2
	if compound > 1 {
		compound = 1
	}
	if compound < -1 {
		compound = -1
	}
	return compound
}

// Label 把复合分值映射为三档标签
// 阈值±0.05,区间内为中性
func Label(compound float64) string {
	switch {
	case compound >= 0.05:
		return models.SentimentPositive
	case compound <= -0.05:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Keywords 提取出现频率最高的topN个关键词
// 只保留纯字母、长度大于3且不在停用词表中的词;
// 频次相同时按首次出现顺序排列
func (a *Analyzer) Keywords(text string, topN int) []string {
	if topN <= 0 {
		topN = 10
	}

	counts := make(map[string]int)
	var order []string

	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(w)) <= 3 || !isAlpha(w) {
			continue
		}
		if _, ok := stopWords[w]; ok {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// categoryRule 主题分类规则,顺序即平分时的优先级
type categoryRule struct {
	name     string
	keywords []string
}

var categoryRules = []categoryRule{
	{"business", []string{"business", "economy", "market", "stock", "finance", "trade", "company", "corporate", "investment", "bank"}},
	{"technology", []string{"technology", "tech", "ai", "artificial intelligence", "software", "computer", "digital", "cyber", "innovation", "startup"}},
	{"politics", []string{"politics", "government", "election", "vote", "congress", "senate", "president", "policy", "law", "parliament"}},
	{"health", []string{"health", "medical", "medicine", "doctor", "hospital", "disease", "virus", "vaccine", "treatment", "healthcare"}},
	{"world", []string{"international", "global", "world", "country", "nation", "war", "conflict", "diplomatic", "foreign", "crisis"}},
	{"sports", []string{"sport", "game", "team", "player", "match", "championship", "league", "tournament", "olympic", "football"}},
}

// Categorize 按关键词命中数给文章分类
// 标题和正文合并匹配,命中数最高的类别胜出,全部未命中为general
func Categorize(title, content string) string {
	text := strings.ToLower(title + " " + content)

	best := "general"
	bestScore := 0
	for _, rule := range categoryRules {
		score := 0
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best = rule.name
			bestScore = score
		}
	}
	return best
}
