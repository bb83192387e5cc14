package danmaku

import (
	"hash/fnv"
	"unicode/utf8"
)

// DanmakuElement 一条弹幕记录。
// 只由解码器从二进制数据创建，创建后不再修改。
type DanmakuElement struct {
	ID       int64  // 弹幕 id
	Progress int64  // 视频内偏移，毫秒
	Mode     int32  // 弹幕类型（滚动/顶部/底部等）
	FontSize int32  // 字号
	Color    int32  // RGB 颜色
	Ctime    int64  // 发送时间，秒级时间戳
	Pool     int32  // 弹幕池
	MidHash  string // 发送者 mid 的哈希，不含原始 uid
	Content  string // 弹幕正文
	Weight   int32  // 权重
	IDStr    string // 弹幕 id 的字符串形式
}

// Fingerprint 弹幕去重指纹。
//
// 由偏移、正文字符数和发送者哈希的 32 位摘要组成。
// 两条内容不同的弹幕可能产生相同指纹（偏移、长度、摘要都相同），
// 这是有意为之的模糊去重，不是内容哈希。
type Fingerprint struct {
	Progress int64
	TextLen  int
	MidHash  uint32
}

// Fingerprint 计算弹幕的去重指纹。偏移为 0 时按 1 处理。
func (d *DanmakuElement) Fingerprint() Fingerprint {
	progress := d.Progress
	if progress == 0 {
		progress = 1
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(d.MidHash))

	return Fingerprint{
		Progress: progress,
		TextLen:  utf8.RuneCountInString(d.Content),
		MidHash:  h.Sum32(),
	}
}
