// Package dmxml 生成经典的 B 站弹幕 XML 文件。
package dmxml

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/xpzouying/bilibili-danmaku/danmaku"
)

const (
	chatServer = "chat.bilibili.com"
	sourceTag  = "JJDownGoPort"
)

// Write 把弹幕列表写成 XML 文档。
// 调用方负责保证 list 已按播放偏移升序排好。
func Write(w io.Writer, cid int64, list []*danmaku.DanmakuElement, downloadTime time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintln(bw, "<i>")
	fmt.Fprintf(bw, "<chatserver>%s</chatserver>\n", chatServer)
	fmt.Fprintln(bw, "<chatid>0</chatid>")
	fmt.Fprintln(bw, "<mission>0</mission>")
	fmt.Fprintf(bw, "<maxlimit>%d</maxlimit>\n", len(list))
	fmt.Fprintln(bw, "<state>0</state>")
	fmt.Fprintln(bw, "<real_name>0</real_name>")
	fmt.Fprintf(bw, "<source>%s</source>\n", sourceTag)
	fmt.Fprintf(bw, `<info>{"cid": %d, "total": %d, "download_time": "%s"}</info>`+"\n",
		cid, len(list), downloadTime.Format("2006-01-02T15:04:05"))

	for _, d := range list {
		fmt.Fprintln(bw, Element(d))
	}

	fmt.Fprintln(bw, "</i>")

	return errors.Wrap(bw.Flush(), "写入弹幕 XML 失败")
}

// Element 渲染一条 <d> 弹幕元素。
// p 属性格式：出现秒数（毫秒偏移除以 1000，保留三位小数）、类型、字号、
// 颜色、发送时间戳、弹幕池、发送者哈希、弹幕 id。
func Element(d *danmaku.DanmakuElement) string {
	p := fmt.Sprintf("%.3f,%d,%d,%d,%d,%d,%s,%d",
		float64(d.Progress)/1000, d.Mode, d.FontSize, d.Color, d.Ctime, d.Pool, d.MidHash, d.ID)
	return fmt.Sprintf(`<d p="%s">%s</d>`, p, html.EscapeString(d.Content))
}
