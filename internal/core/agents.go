package core

import "sync"

// DefaultUserAgents 内置User-Agent池
// 轮换使用,降低被新闻站点按UA限流的概率
func DefaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	}
}

// AgentRotator 轮换分发User-Agent
type AgentRotator struct {
	mu     sync.Mutex
	agents []string
	next   int
}

// NewAgentRotator 创建UA轮换器,空列表时使用内置池
func NewAgentRotator(agents []string) *AgentRotator {
	if len(agents) == 0 {
		agents = DefaultUserAgents()
	}
	return &AgentRotator{agents: agents}
}

// Next 返回下一个User-Agent
func (r *AgentRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ua := r.agents[r.next]
	r.next = (r.next + 1) % len(r.agents)
	return ua
}
