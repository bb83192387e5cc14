package danmaku

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// densityCap 密度阈值里目标条数的上限
	densityCap = 5000
	// densityRatio 上一批弹幕至少要达到目标的这个比例才继续往前查
	densityRatio = 0.5
	// dayInSeconds 一天的秒数，用于时间戳回退
	dayInSeconds = 86400

	dateLayout = "2006-01-02"
)

// FetchHistory 自适应地向前遍历历史弹幕存档。
//
// 历史接口按日历日期寻址，没有游标也没有总数，唯一可用的信号是上一批
// 弹幕里最早的发送时间戳：每查到一批就把边界移到 min(ctime)，如果移动
// 不足一天则强制回退一天，避免反复查同一天。上一批条数低于
// 0.5*min(target, 5000) 时视为存档到头，停止遍历。
//
// publishDate 为零值时直接返回空：没有发布日期就没有下界，历史查询无意义。
// 查询起点固定锚在昨天，EndDays 不影响遍历本身，只决定默认时段的展示。
func (d *Downloader) FetchHistory(ctx context.Context, oid int64, opts Options, target int, pool *Pool) []*DanmakuElement {
	if opts.PublishDate.IsZero() {
		logrus.Info("未提供视频发布日期，跳过历史弹幕获取")
		return nil
	}

	logrus.Info("正在获取历史弹幕...")
	if opts.StartDays != 0 || opts.EndDays != 1 {
		logrus.Infof("下载时段: 第 %d-%d 天", opts.StartDays, opts.EndDays)
	} else {
		logrus.Info("使用默认时段: 从发布日期开始")
	}

	var (
		all       []*DanmakuElement
		lastBatch []*DanmakuElement
		boundary  int64 // 上一批弹幕的最早时间戳，0 表示还没查到过
	)

	threshold := float64(min(target, densityCap)) * densityRatio

	// 从昨天开始查，最早查到发布日期 + StartDays
	current := d.now().AddDate(0, 0, -1)
	lower := opts.PublishDate.AddDate(0, 0, opts.StartDays)

	logrus.Infof("从 %s 开始查询，最早到 %s",
		current.Format(dateLayout), lower.Format(dateLayout))

	for !current.Before(lower) {
		if boundary != 0 {
			d.sleep(historyDelay)
		}

		// 只有第一次查询、或上一批足够密时才发请求；
		// 稀疏的上一批会直接落进下面的密度检查并结束循环，
		// 省掉一次注定无用的请求
		if boundary == 0 || float64(len(lastBatch)) >= threshold {
			date := current.Format(dateLayout)
			logrus.Infof("%s: 查询中...", date)

			batch := d.queryHistory(ctx, oid, date)
			lastBatch = batch

			if len(batch) > 0 {
				var added int
				all, added = pool.Merge(all, batch)
				logrus.Infof("%s: 获取 %d 条，新增 %d 条，总计 %d 条",
					date, len(batch), added, len(all))

				minCtime := batch[0].Ctime
				for _, dm := range batch[1:] {
					if dm.Ctime < minCtime {
						minCtime = dm.Ctime
					}
				}

				// 用这批弹幕的最早时间戳决定下一个查询日期；
				// 如果和当前边界落在同一天或相邻一天内，强制回退一天
				if boundary != 0 && boundary-minCtime < dayInSeconds {
					boundary = minCtime - dayInSeconds
				} else {
					boundary = minCtime
				}
				current = time.Unix(boundary, 0)
				logrus.Infof("根据弹幕时间戳，下次查询日期调整为 %s", current.Format(dateLayout))
			}
		}

		if float64(len(lastBatch)) < threshold {
			logrus.Info("弹幕密度过低，停止历史查询")
			break
		}

		// 正常不会走到这里：有了批次就有时间戳边界。保险起见按天递减
		if boundary == 0 {
			current = current.AddDate(0, 0, -1)
		}
	}

	logrus.Infof("历史弹幕获取完成: %d 条", len(all))
	return all
}

// queryHistory 查一个日期的历史弹幕。
// 请求失败、非 200、空响应、解码为空都返回空批次，由调用方的密度检查收尾。
func (d *Downloader) queryHistory(ctx context.Context, oid int64, date string) []*DanmakuElement {
	resp, err := d.fetcher.GetHistory(ctx, oid, date)
	if err != nil {
		logrus.Warnf("%s: 请求失败: %v", date, err)
		return nil
	}

	switch {
	case resp.StatusCode == http.StatusPreconditionFailed:
		logrus.Warnf("%s: 需要验证 (412)，可能需要重新登录", date)
		return nil
	case resp.StatusCode != http.StatusOK:
		logrus.Warnf("%s: 请求失败 (%d)", date, resp.StatusCode)
		return nil
	case len(resp.Body) == 0:
		logrus.Infof("%s: 响应为空", date)
		return nil
	}

	batch := DecodeSegment(resp.Body)
	if len(batch) == 0 {
		logrus.Infof("%s: 解码后无弹幕数据", date)
	}
	return batch
}
