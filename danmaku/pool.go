package danmaku

// Pool 单次抓取会话内的弹幕指纹集合。
//
// 由每次下载显式创建并由调用方持有，不同 cid 的抓取必须使用各自的 Pool，
// 不能跨会话复用。
type Pool struct {
	seen map[Fingerprint]struct{}
}

// NewPool 创建空的指纹池
func NewPool() *Pool {
	return &Pool{
		seen: make(map[Fingerprint]struct{}),
	}
}

// Len 池中指纹数量
func (p *Pool) Len() int {
	return len(p.seen)
}

// Contains 指纹是否已存在
func (p *Pool) Contains(fp Fingerprint) bool {
	_, ok := p.seen[fp]
	return ok
}

// Merge 把 incoming 中指纹未出现过的弹幕追加到 dst，返回新列表和新增条数。
//
// 保持 dst 的原有顺序，先出现的弹幕优先保留；重复合并同一批数据不会产生变化。
func (p *Pool) Merge(dst, incoming []*DanmakuElement) ([]*DanmakuElement, int) {
	added := 0
	for _, d := range incoming {
		fp := d.Fingerprint()
		if _, ok := p.seen[fp]; ok {
			continue
		}
		p.seen[fp] = struct{}{}
		dst = append(dst, d)
		added++
	}
	return dst, added
}
