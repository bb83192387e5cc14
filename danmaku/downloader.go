package danmaku

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// segmentDelay 实时弹幕分段之间的间隔
	segmentDelay = 500 * time.Millisecond
	// historyDelay 历史弹幕日期查询之间的间隔
	historyDelay = 2 * time.Second

	// estimateFactor 用第一段的样本条数估算弹幕总量的倍数，
	// 只用作历史遍历的密度阈值，不是精确值
	estimateFactor = 20
	// defaultTarget 估算不出来时的兜底总量
	defaultTarget = 5000
)

// Options 下载参数
type Options struct {
	// PublishDate 视频发布日期，零值表示未知；未知时跳过历史弹幕
	PublishDate time.Time
	// StartDays 历史查询下界相对发布日期的天数偏移
	StartDays int
	// EndDays 历史查询上界相对发布日期的天数偏移，-1 表示从当前日期开始
	EndDays int
}

// Downloader 完整弹幕下载器。
// 先抓实时弹幕，再按需向前遍历历史存档，最后合并排序。
type Downloader struct {
	fetcher Fetcher

	// 便于测试注入
	sleep func(time.Duration)
	now   func() time.Time
}

// NewDownloader 创建下载器
func NewDownloader(fetcher Fetcher) *Downloader {
	return &Downloader{
		fetcher: fetcher,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// EstimateTotal 用第一段实时弹幕估算弹幕总量。
//
// XML 弹幕接口已经废弃，拿不到权威的 maxlimit，只能用样本条数乘一个
// 固定倍数粗估；估不出来时返回默认值。样本本身也一并返回，参与最终合并。
func (d *Downloader) EstimateTotal(ctx context.Context, oid int64) (int, []*DanmakuElement) {
	logrus.Info("正在估算弹幕总量...")

	resp, err := d.fetcher.GetSegment(ctx, oid, 1)
	if err == nil && resp.StatusCode == http.StatusOK && len(resp.Body) > 0 {
		if sample := DecodeSegment(resp.Body); len(sample) > 0 {
			total := len(sample) * estimateFactor
			logrus.Infof("估算弹幕总数: ~%d，当前样本 %d 条", total, len(sample))
			return total, sample
		}
	}

	logrus.Info("无法估算弹幕总量，使用默认值")
	return defaultTarget, nil
}

// Download 抓取一个 cid 的完整弹幕。
//
// 流程：估算总量 → 实时弹幕 → （有发布日期时）历史弹幕 → 三路合并去重
// → 按播放偏移升序排序。实时和历史共用同一个会话内的指纹池；
// 最终合并按样本、实时、历史的先后次序，先到者优先。
func (d *Downloader) Download(ctx context.Context, oid int64, opts Options) []*DanmakuElement {
	target, sample := d.EstimateTotal(ctx, oid)

	pool := NewPool()
	live := d.FetchLive(ctx, oid, pool)

	var history []*DanmakuElement
	if !opts.PublishDate.IsZero() && target > 0 {
		history = d.FetchHistory(ctx, oid, opts, target, pool)
	}

	logrus.Info("正在合并弹幕数据...")

	final := NewPool()
	var merged []*DanmakuElement
	for _, part := range [][]*DanmakuElement{sample, live, history} {
		var added int
		merged, added = final.Merge(merged, part)
		logrus.Infof("  原始 %d 条，新增 %d 条", len(part), added)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Progress < merged[j].Progress
	})

	logrus.Infof("合并完成，共获取 %d 条弹幕", len(merged))
	return merged
}
