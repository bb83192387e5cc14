package dmxml

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpzouying/bilibili-danmaku/danmaku"
)

func TestElement(t *testing.T) {
	tests := []struct {
		name string
		dm   *danmaku.DanmakuElement
		want string
	}{
		{
			name: "毫秒偏移保留三位小数",
			dm: &danmaku.DanmakuElement{
				ID: 9, Progress: 12345, Mode: 1, FontSize: 25,
				Color: 16777215, Ctime: 1700000000, MidHash: "abc123", Content: "前方高能",
			},
			want: `<d p="12.345,1,25,16777215,1700000000,0,abc123,9">前方高能</d>`,
		},
		{
			name: "零偏移",
			dm:   &danmaku.DanmakuElement{Content: "空降成功"},
			want: `<d p="0.000,0,0,0,0,0,,0">空降成功</d>`,
		},
		{
			name: "正文转义",
			dm:   &danmaku.DanmakuElement{Progress: 1000, Content: `<b>&"x"</b>`},
			want: `<d p="1.000,0,0,0,0,0,,0">&lt;b&gt;&amp;&#34;x&#34;&lt;/b&gt;</d>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Element(tt.dm))
		})
	}
}

func TestWrite(t *testing.T) {
	list := []*danmaku.DanmakuElement{
		{ID: 1, Progress: 500, Content: "第一条"},
		{ID: 2, Progress: 12345, Content: "第二条"},
	}

	var buf bytes.Buffer
	downloadTime := time.Date(2024, 6, 15, 20, 30, 0, 0, time.Local)
	require.NoError(t, Write(&buf, 42, list, downloadTime))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, "<chatserver>chat.bilibili.com</chatserver>")
	assert.Contains(t, out, "<chatid>0</chatid>")
	assert.Contains(t, out, "<mission>0</mission>")
	assert.Contains(t, out, "<maxlimit>2</maxlimit>")
	assert.Contains(t, out, "<state>0</state>")
	assert.Contains(t, out, "<source>JJDownGoPort</source>")
	assert.Contains(t, out, `{"cid": 42, "total": 2, "download_time": "2024-06-15T20:30:00"}`)
	assert.Contains(t, out, `<d p="0.500,0,0,0,0,0,,1">第一条</d>`)
	assert.Contains(t, out, `<d p="12.345,0,0,0,0,0,,2">第二条</d>`)
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), "</i>"))
}
