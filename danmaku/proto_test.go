package danmaku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendVarint 按 7 位一组追加 varint 编码
func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// appendTag 追加字段 tag（字段号 + wire type）
func appendTag(b []byte, fieldNum int, wireType int) []byte {
	return appendVarint(b, uint64(fieldNum)<<3|uint64(wireType))
}

func appendVarintField(b []byte, fieldNum int, v uint64) []byte {
	b = appendTag(b, fieldNum, wireVarint)
	return appendVarint(b, v)
}

func appendBytesField(b []byte, fieldNum int, data []byte) []byte {
	b = appendTag(b, fieldNum, wireBytes)
	b = appendVarint(b, uint64(len(data)))
	return append(b, data...)
}

// encodeElement 编码一条弹幕消息体
func encodeElement(d *DanmakuElement) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(d.ID))
	b = appendVarintField(b, 2, uint64(d.Progress))
	b = appendVarintField(b, 3, uint64(d.Mode))
	b = appendVarintField(b, 4, uint64(d.FontSize))
	b = appendVarintField(b, 5, uint64(d.Color))
	b = appendBytesField(b, 6, []byte(d.MidHash))
	b = appendBytesField(b, 7, []byte(d.Content))
	b = appendVarintField(b, 8, uint64(d.Ctime))
	b = appendVarintField(b, 9, uint64(d.Weight))
	b = appendVarintField(b, 11, uint64(d.Pool))
	b = appendBytesField(b, 12, []byte(d.IDStr))
	return b
}

// encodeSegment 把若干条弹幕编码成顶层响应
func encodeSegment(elems ...*DanmakuElement) []byte {
	var b []byte
	for _, e := range elems {
		b = appendBytesField(b, 1, encodeElement(e))
	}
	return b
}

func sampleElement(id int64) *DanmakuElement {
	return &DanmakuElement{
		ID:       id,
		Progress: id * 1000,
		Mode:     1,
		FontSize: 25,
		Color:    16777215,
		Ctime:    1700000000 + id,
		Pool:     0,
		MidHash:  "abcdef12",
		Content:  "弹幕内容",
		Weight:   10,
		IDStr:    "114514",
	}
}

func TestDecodeSegment(t *testing.T) {
	want := []*DanmakuElement{sampleElement(1), sampleElement(2), sampleElement(3)}

	got := DecodeSegment(encodeSegment(want...))
	require.Len(t, got, 3)

	for i, elem := range got {
		assert.Equal(t, want[i], elem)
	}
}

func TestDecodeSegmentEmpty(t *testing.T) {
	assert.Empty(t, DecodeSegment(nil))
	assert.Empty(t, DecodeSegment([]byte{}))
}

func TestDecodeSegmentSkipsUnknownFields(t *testing.T) {
	// 已知字段前后都插入未知字段（varint 和 length-delimited 两种）
	var b []byte
	b = appendVarintField(b, 4, 42)
	b = appendBytesField(b, 5, []byte("ignore me"))
	b = appendBytesField(b, 1, encodeElement(sampleElement(7)))
	b = appendVarintField(b, 9, 1<<40)
	b = appendBytesField(b, 1, encodeElement(sampleElement(8)))
	b = appendBytesField(b, 3, []byte{0xFF, 0xFE})

	got := DecodeSegment(b)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, int64(8), got[1].ID)
}

func TestDecodeSegmentUnknownWireType(t *testing.T) {
	// wire type 5（fixed32）不支持，应终止当前消息并保留已解出的弹幕
	var b []byte
	b = appendBytesField(b, 1, encodeElement(sampleElement(1)))
	b = appendTag(b, 2, 5)
	b = append(b, 0x01, 0x02, 0x03, 0x04)
	b = appendBytesField(b, 1, encodeElement(sampleElement(2)))

	got := DecodeSegment(b)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestDecodeSegmentTruncatedPayload(t *testing.T) {
	full := encodeSegment(sampleElement(1), sampleElement(2))

	// 在第二条的消息体中间截断，第一条必须完整保留
	got := DecodeSegment(full[:len(full)-5])
	require.NotEmpty(t, got)
	assert.Equal(t, sampleElement(1), got[0])
}

func TestDecodeElementTruncatedField(t *testing.T) {
	// content 字段声明的长度超过剩余字节：在坏字段处截断，保留之前的字段
	var b []byte
	b = appendVarintField(b, 1, 99)
	b = appendVarintField(b, 2, 12345)
	b = appendTag(b, 7, wireBytes)
	b = appendVarint(b, 1000)
	b = append(b, []byte("short")...)

	elem, truncated := decodeElement(b)
	require.NotNil(t, elem)
	assert.True(t, truncated)
	assert.Equal(t, int64(99), elem.ID)
	assert.Equal(t, int64(12345), elem.Progress)
	assert.Empty(t, elem.Content)
}

func TestDecodeElementNoRecognizedFields(t *testing.T) {
	var b []byte
	b = appendVarintField(b, 20, 1)
	b = appendBytesField(b, 21, []byte("x"))

	elem, truncated := decodeElement(b)
	assert.Nil(t, elem)
	assert.False(t, truncated)
}

func TestDecodeStringInvalidUTF8(t *testing.T) {
	// 非法 UTF-8 字节直接丢弃，不让整段解析失败
	var body []byte
	body = appendVarintField(body, 2, 1000)
	body = appendBytesField(body, 7, append([]byte("好"), 0xFF, 0xFE, 'a'))

	var b []byte
	b = appendBytesField(b, 1, body)

	got := DecodeSegment(b)
	require.Len(t, got, 1)
	assert.Equal(t, "好a", got[0].Content)
}

func TestDecodeVarintMultiByte(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
	}{
		{name: "单字节", v: 0},
		{name: "边界127", v: 127},
		{name: "两字节", v: 300},
		{name: "大数", v: 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := appendVarint(nil, tt.v)
			got, pos := decodeVarint(b, 0)
			assert.Equal(t, tt.v, got)
			assert.Equal(t, len(b), pos)
		})
	}
}
