package sentiment

import (
	"math"
	"strings"
	"testing"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
)

func TestAnalyzer_Score(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "正面文本",
			text: "markets rally on strong growth and optimistic outlook",
			// 8词中4个正面词: 4/8*2 = 1.0
			want: 1.0,
		},
		{
			name: "负面文本",
			text: "the crisis deepens as markets crash and losses mount today",
			// 10词中2个负面词: -2/10*2 = -0.4
			want: -0.4,
		},
		{
			name: "中性文本",
			text: "the committee will meet again on thursday afternoon",
			want: 0,
		},
		{
			name: "空文本",
			text: "",
			want: 0,
		},
		{
			name: "正负抵消",
			text: "growth slows while decline continues",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Score(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_ScoreClamped(t *testing.T) {
	a := NewAnalyzer()

	// 全是正面词时原始分值为2,应被截断到1
	if got := a.Score("good great excellent win"); got != 1.0 {
		t.Errorf("Score() = %v, want 1.0 (截断)", got)
	}
	if got := a.Score("bad terrible awful crash"); got != -1.0 {
		t.Errorf("Score() = %v, want -1.0 (截断)", got)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		compound float64
		want     string
	}{
		{0.06, models.SentimentPositive},
		{0.05, models.SentimentPositive}, // 阈值本身算正面
		{0.04, models.SentimentNeutral},
		{0.0, models.SentimentNeutral},
		{-0.04, models.SentimentNeutral},
		{-0.05, models.SentimentNegative}, // 阈值本身算负面
		{-0.5, models.SentimentNegative},
	}

	for _, tt := range tests {
		if got := Label(tt.compound); got != tt.want {
			t.Errorf("Label(%v) = %s, want %s", tt.compound, got, tt.want)
		}
	}
}

func TestAnalyzer_Keywords(t *testing.T) {
	a := NewAnalyzer()

	text := "inflation inflation inflation markets markets policy " +
		"the and with a42b it is"
	got := a.Keywords(text, 3)

	want := []string{"inflation", "markets", "policy"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keywords()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAnalyzer_KeywordsFilters(t *testing.T) {
	a := NewAnalyzer()

	// 停用词、短词、含数字的词都应被过滤
	got := a.Keywords("the cat ran to b2b hubs", 10)
	for _, kw := range got {
		if kw == "the" || kw == "cat" || kw == "b2b" {
			t.Errorf("关键词 %q 不应出现", kw)
		}
	}
	if len(got) != 1 || got[0] != "hubs" {
		t.Errorf("Keywords() = %v, want [hubs]", got)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{
			name:    "商业",
			title:   "Stock market update",
			content: "The economy showed signs of growth as investment in banks rose.",
			want:    "business",
		},
		{
			name:    "科技",
			title:   "AI startup raises funding",
			content: "The software company builds digital innovation tools.",
			want:    "technology",
		},
		{
			name:    "政治",
			title:   "Parliament passes new law",
			content: "The government won the vote after the election.",
			want:    "politics",
		},
		{
			name:    "健康",
			title:   "New vaccine approved",
			content: "Hospital trials showed the treatment is effective against the virus.",
			want:    "health",
		},
		{
			name:    "体育",
			title:   "Championship final tonight",
			content: "The team and its star player prepare for the biggest match of the league.",
			want:    "sports",
		},
		{
			name:    "无命中",
			title:   "Quiet afternoon",
			content: "Nothing much happened here.",
			want:    "general",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.title, tt.content); got != tt.want {
				t.Errorf("Categorize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAnalyzer_LongText(t *testing.T) {
	a := NewAnalyzer()

	// 长文本中少量情感词,分值应落在中性区间附近
	text := strings.Repeat("the committee discussed procedural matters in detail ", 20) +
		"growth was mentioned once"
	got := a.Score(text)
	if got <= 0 || got >= 0.05 {
		t.Errorf("Score() = %v, want (0, 0.05)", got)
	}
}
