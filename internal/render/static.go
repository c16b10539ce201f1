package render

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

// StaticFetcher 静态抓取器(使用Colly)
// 面向不依赖JS渲染的来源,与浏览器会话提供相同的Render能力。
// 并发安全: 每次Render创建独立的collector
type StaticFetcher struct {
	client    *http.Client
	nextAgent func() string
}

// NewStaticFetcher 创建静态抓取器
// nextAgent 为每次请求提供轮换的User-Agent
func NewStaticFetcher(timeout time.Duration, nextAgent func() string) *StaticFetcher {
	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // 允许访问证书链不完整的新闻站点镜像
			},
		},
		Timeout: timeout,
	}

	return &StaticFetcher{
		client:    client,
		nextAgent: nextAgent,
	}
}

// Render 请求页面并返回HTML
// 签名与浏览器会话一致,来源是否走渲染路径对上层透明
func (f *StaticFetcher) Render(url string, timeout time.Duration) (string, error) {
	c := colly.NewCollector()
	c.SetClient(f.client)
	c.SetRequestTimeout(timeout)

	var (
		html     string
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if f.nextAgent != nil {
			if ua := f.nextAgent(); ua != "" {
				r.Headers.Set("User-Agent", ua)
			}
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Accept-Encoding", "gzip, deflate, br")
	})

	c.OnResponse(func(r *colly.Response) {
		body := r.Body
		if encoding := r.Headers.Get("Content-Encoding"); encoding != "" {
			decompressed, err := decompressBody(encoding, body)
			if err != nil {
				log.Warn().Err(err).Msgf("解压响应失败 [%s] (编码=%s)", url, encoding)
				// 解压失败,仍然尝试使用原始body
			} else {
				body = decompressed
			}
		}
		html = string(body)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("访问页面失败: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fmt.Errorf("请求页面失败: %w", fetchErr)
	}
	if html == "" {
		return "", fmt.Errorf("页面响应为空")
	}

	return html, nil
}

// decompressBody 根据Content-Encoding解压响应体
// 支持 gzip, deflate, br (Brotli) 三种压缩格式
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "":
		return body, nil

	default:
		log.Warn().Msgf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
