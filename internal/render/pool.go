package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// slot 池内的一个会话槽位
// 槽位锁在checkout期间由持有者占用,保证会话不被并发使用
type slot struct {
	id       int
	mu       sync.Mutex
	session  Session
	bad      bool      // 导航失败后标记,下次checkout前懒重建
	lastUsed time.Time // 最后一次归还时间
}

// Pool 固定大小的会话池
// 按round-robin顺序分发会话;池锁只保护轮转索引,
// 渲染等耗时操作都在锁外进行
type Pool struct {
	factory Factory
	slots   []*slot

	mu     sync.Mutex // 保护next和closed
	next   int
	closed bool
}

// NewPool 创建会话池
// 初始化失败的会话被跳过并记录;一个都没有初始化成功时返回错误,
// 引擎在零容量下无法运行
func NewPool(size int, factory Factory) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("会话池大小必须至少为1")
	}

	p := &Pool{factory: factory}
	for i := 0; i < size; i++ {
		session, err := factory(i)
		if err != nil {
			log.Warn().Err(err).Msgf("会话 %d 初始化失败,跳过", i+1)
			continue
		}
		p.slots = append(p.slots, &slot{id: i, session: session, lastUsed: time.Now()})
	}

	if len(p.slots) == 0 {
		return nil, fmt.Errorf("没有任何会话初始化成功")
	}

	log.Info().Msgf("会话池就绪: %d/%d 个会话", len(p.slots), size)
	return p, nil
}

// Handle 一个已检出的会话句柄
// 持有期间独占底层会话,归还后不得继续使用
type Handle struct {
	slot *slot
}

// Acquire 按round-robin顺序检出下一个会话
// 目标槽位被占用时阻塞等待;槽位被标记失效时先重建再交出
func (p *Pool) Acquire() (*Handle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("会话池已关闭")
	}
	s := p.slots[p.next]
	p.next = (p.next + 1) % len(p.slots)
	p.mu.Unlock()

	// 阻塞直到该槽位空闲
	s.mu.Lock()

	if s.bad || s.session == nil {
		if s.session != nil {
			if err := s.session.Close(); err != nil {
				log.Warn().Err(err).Msgf("关闭失效会话 %d 失败", s.id)
			}
			s.session = nil
		}

		session, err := p.factory(s.id)
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("重建会话 %d 失败: %w", s.id, err)
		}
		s.session = session
		s.bad = false
		log.Debug().Msgf("会话 %d 已重建", s.id)
	}

	return &Handle{slot: s}, nil
}

// Release 归还会话
func (p *Pool) Release(h *Handle) {
	if h == nil {
		return
	}
	h.slot.lastUsed = time.Now()
	h.slot.mu.Unlock()
}

// Render 使用句柄对应的会话渲染页面
func (h *Handle) Render(url string, timeout time.Duration) (string, error) {
	return h.slot.session.Render(url, timeout)
}

// MarkBad 标记会话失效,下次检出该槽位时懒重建
// 调用方持有槽位锁,直接写入是安全的
func (h *Handle) MarkBad() {
	h.slot.bad = true
}

// ID 返回槽位编号
func (h *Handle) ID() int {
	return h.slot.id
}

// Size 返回池中存活槽位数
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// Close 关闭所有会话并停止分发
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	for _, s := range p.slots {
		s.mu.Lock()
		if s.session != nil {
			if err := s.session.Close(); err != nil {
				log.Warn().Err(err).Msgf("关闭会话 %d 失败", s.id)
			}
			s.session = nil
		}
		s.mu.Unlock()
	}

	log.Info().Msg("会话池已关闭")
	return nil
}
