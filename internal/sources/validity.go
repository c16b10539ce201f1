package sources

import (
	"strings"
	"time"
)

// invalidPatterns 非文章URL的特征片段
// 命中任意一个即拒绝: 视频/直播/图集/社交分享/登录注册/静态资源等
var invalidPatterns = []string{
	"/video/", "/live/", "/weather/", "/sport/", "/iplayer/", "/sounds/",
	"/programmes/", "/schedule/", "/contact/", "/about/", "/help/",
	"/terms/", "/privacy/", "/cookies/", "/accessibility/", "/newsletter",
	"/register", "/sign-in", "/login", "/profile", "/account", "/subscribe",
	"/gallery/", "/photos/", "/pictures/", "/images/", "/podcast/",
	"/radio/", "/tv/", "/media/", "/multimedia/", "/interactive/",
	"share", "facebook.com", "twitter.com", "instagram.com", "youtube.com",
	"/tags/", "/topics/", "/authors/", "/search", "/archive/",
	"/rss", "/feed", "/sitemap", "mailto:", "tel:", "whatsapp:",
	"/corrections/", "/obituaries/", "/crossword/", "/sudoku/",
	"/horoscope/", "/games/", "/quiz/", "/competition/",
	".pdf", ".jpg", ".png", ".gif", ".mp4", ".mp3",
	"/live-reporting/", "/coronavirus/", "/covid",
	"/election/", "/olympics/", "/world-cup/", "/champions-league/",
}

// AllowURL 文章URL有效性判定
//
// 判定策略是宽松的默认放行: 只要不命中已知的非文章特征就接受,
// 日期型路径提前接受。收紧该策略会改变召回行为,保持现状是
// 有意为之的策略而非疏漏。
func AllowURL(rawURL string) bool {
	if rawURL == "" || strings.Contains(rawURL, "#") ||
		strings.Contains(rawURL, "javascript:") || strings.Contains(rawURL, "mailto:") {
		return false
	}

	urlLower := strings.ToLower(rawURL)
	for _, pattern := range invalidPatterns {
		if strings.Contains(urlLower, pattern) {
			return false
		}
	}

	// 日期型路径提前接受
	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)
	datePatterns := []string{
		today.Format("/2006/01/02/"),
		yesterday.Format("/2006/01/02/"),
		today.Format("/2006-01-02"),
		yesterday.Format("/2006-01-02"),
		"/2025/", "/2024/",
	}
	for _, pattern := range datePatterns {
		if strings.Contains(rawURL, pattern) {
			return true
		}
	}

	return true
}
