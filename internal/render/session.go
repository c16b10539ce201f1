// Package render 管理页面渲染能力: 无头浏览器会话池、
// 静态抓取回退路径以及基于系统资源的会话数上限。
package render

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Session 一个可复用的页面渲染会话
// 调用方在同一时刻独占会话,渲染失败时由调用方决定是否标记失效
type Session interface {
	// Render 导航到URL并返回渲染后的HTML,超时返回错误
	Render(url string, timeout time.Duration) (string, error)

	// Close 释放会话资源
	Close() error
}

// Factory 会话构造函数,id为池内槽位编号
type Factory func(id int) (Session, error)

// LaunchBrowser 启动共享的浏览器进程
// 所有会话在同一浏览器内以独立标签页形式创建
func LaunchBrowser(headless bool) (*rod.Browser, error) {
	controlURL, err := launcher.New().
		Headless(headless).
		Set("ignore-certificate-errors").
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("window-size", "1920,1080").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	return browser, nil
}

// pageSession 基于rod标签页的渲染会话
type pageSession struct {
	id     int
	page   *rod.Page
	settle time.Duration
}

// NewBrowserFactory 创建基于浏览器标签页的会话工厂
// nextAgent 为每个新会话提供一个User-Agent(轮换)
func NewBrowserFactory(browser *rod.Browser, nextAgent func() string, settle time.Duration) Factory {
	return func(id int) (Session, error) {
		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, fmt.Errorf("创建标签页失败: %w", err)
		}

		if nextAgent != nil {
			if ua := nextAgent(); ua != "" {
				if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
					_ = page.Close()
					return nil, fmt.Errorf("设置User-Agent失败: %w", err)
				}
			}
		}

		return &pageSession{id: id, page: page, settle: settle}, nil
	}
}

// Render 导航并返回渲染后的HTML
// 滚动1/3页高触发懒加载,短暂等待后取最终DOM
func (s *pageSession) Render(url string, timeout time.Duration) (html string, err error) {
	// 浏览器崩溃时rod会panic,转换为普通错误交给重试策略处理
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("渲染会话panic: %v", r)
		}
	}()

	page := s.page.Timeout(timeout)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("导航失败: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("等待页面加载失败: %w", err)
	}

	// 滚动触发懒加载,失败不影响提取
	_, _ = page.Evaluate(&rod.EvalOptions{
		JS: `() => window.scrollTo(0, document.body.scrollHeight / 3)`,
	})

	if s.settle > 0 {
		time.Sleep(s.settle)
	}

	html, err = page.HTML()
	if err != nil {
		return "", fmt.Errorf("获取页面HTML失败: %w", err)
	}

	return html, nil
}

// Close 关闭标签页
func (s *pageSession) Close() error {
	return s.page.Close()
}
