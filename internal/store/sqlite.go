// Package store 提供文章的SQLite持久化。
// 以URL为唯一键,重复采集同一文章时覆盖旧记录。
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id              TEXT NOT NULL,
	title           TEXT,
	content         TEXT,
	url             TEXT NOT NULL UNIQUE,
	source          TEXT,
	published_date  TEXT,
	author          TEXT,
	category        TEXT,
	sentiment_score REAL,
	sentiment_label TEXT,
	keywords        TEXT,
	content_length  INTEGER,
	word_count      INTEGER,
	scraped_at      TEXT
);
CREATE INDEX IF NOT EXISTS idx_source    ON articles(source);
CREATE INDEX IF NOT EXISTS idx_sentiment ON articles(sentiment_label);
CREATE INDEX IF NOT EXISTS idx_date      ON articles(scraped_at);
`

// Store SQLite文章存储
type Store struct {
	db *sql.DB
}

// Open 打开(必要时创建)数据库并初始化表结构
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}

	utils.Infof("数据库就绪: %s", path)
	return &Store{db: db}, nil
}

// Upsert 写入一篇文章,同URL的旧记录被覆盖
func (s *Store) Upsert(a *models.Article) error {
	keywords, err := json.Marshal(a.Keywords)
	if err != nil {
		return fmt.Errorf("序列化关键词失败: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO articles
		(id, title, content, url, source, published_date, author, category,
		 sentiment_score, sentiment_label, keywords, content_length, word_count, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.URL, a.Source, a.PublishedDate, a.Author, a.Category,
		a.SentimentScore, a.SentimentLabel, string(keywords), a.ContentLength, a.WordCount, a.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("写入文章失败: %w", err)
	}
	return nil
}

// UpsertAll 批量写入,单篇失败只记录不中断,返回成功写入数
func (s *Store) UpsertAll(articles []*models.Article) int {
	saved := 0
	for _, a := range articles {
		if err := s.Upsert(a); err != nil {
			utils.Warnf("文章 %s 入库失败: %v", a.URL, err)
			continue
		}
		saved++
	}
	return saved
}

// Filter 查询条件,零值字段不参与过滤
type Filter struct {
	Source   string
	Label    string
	Category string
	Limit    int
}

// Query 按条件查询文章,按采集时间倒序
func (s *Store) Query(f Filter) ([]*models.Article, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}
	if f.Label != "" {
		conds = append(conds, "sentiment_label = ?")
		args = append(args, f.Label)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}

	query := `SELECT id, title, content, url, source, published_date, author, category,
		sentiment_score, sentiment_label, keywords, content_length, word_count, scraped_at
		FROM articles`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY scraped_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var (
			a        models.Article
			keywords string
		)
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Content, &a.URL, &a.Source, &a.PublishedDate, &a.Author, &a.Category,
			&a.SentimentScore, &a.SentimentLabel, &keywords, &a.ContentLength, &a.WordCount, &a.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("读取文章行失败: %w", err)
		}
		if keywords != "" {
			if err := json.Unmarshal([]byte(keywords), &a.Keywords); err != nil {
				utils.Warnf("文章 %s 关键词反序列化失败: %v", a.URL, err)
			}
		}
		articles = append(articles, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历查询结果失败: %w", err)
	}
	return articles, nil
}

// Count 返回文章总数
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("统计文章数失败: %w", err)
	}
	return n, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}
