package scrape

import "sync"

// Deduplicator 进程生命周期内的URL去重器
// 防止同一URL被重复提取和重复写入存储
type Deduplicator struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDeduplicator 创建去重器
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]struct{}),
	}
}

// Seen 检查并登记URL
// 首次出现返回false并登记,之后对同一URL始终返回true
func (d *Deduplicator) Seen(url string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[url]; ok {
		return true
	}
	d.seen[url] = struct{}{}
	return false
}

// Len 返回已登记的URL数
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
