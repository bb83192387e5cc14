package danmaku

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	// maxSegments 实时弹幕最多抓取的分段数，无论服务端返回什么都不会超过
	maxSegments = 100
)

// FetchLive 逐段抓取实时弹幕，合并进 pool 并返回去重后的列表。
//
// 任意一种情况都会停止循环：304（无新内容）、非 200 状态码、空响应、
// 解码不出弹幕、或者整段弹幕都已在 pool 中（说明已经抓全了）。
// 请求失败等同于空响应。每段之间固定等待 0.5 秒。
func (d *Downloader) FetchLive(ctx context.Context, oid int64, pool *Pool) []*DanmakuElement {
	var list []*DanmakuElement

	logrus.Info("正在获取实时弹幕...")

	for index := 1; index <= maxSegments; index++ {
		resp, err := d.fetcher.GetSegment(ctx, oid, index)
		if err != nil {
			logrus.Warnf("分段 %d: 请求失败: %v", index, err)
			break
		}

		if resp.StatusCode == http.StatusNotModified {
			logrus.Infof("分段 %d: 无新内容 (304)，停止获取", index)
			break
		}
		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode == http.StatusPreconditionFailed {
				logrus.Warnf("分段 %d: 请求被拦截 (412)，可能需要重新登录或更新 cookies", index)
			} else {
				logrus.Warnf("分段 %d: HTTP 错误 %d", index, resp.StatusCode)
			}
			break
		}

		if len(resp.Body) == 0 {
			logrus.Infof("分段 %d: 响应为空，停止获取", index)
			break
		}

		segment := DecodeSegment(resp.Body)
		if len(segment) == 0 {
			logrus.Infof("分段 %d: 解码后无弹幕数据，停止获取", index)
			break
		}

		var added int
		list, added = pool.Merge(list, segment)
		logrus.Infof("分段 %d: 获取 %d 条，新增 %d 条，总计 %d 条",
			index, len(segment), added, len(list))

		if added == 0 {
			// 整段都是已知弹幕，说明已经获取完毕
			break
		}

		d.sleep(segmentDelay)
	}

	logrus.Infof("实时弹幕获取完成: %d 条", len(list))
	return list
}
