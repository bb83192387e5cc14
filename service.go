package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/bilibili-danmaku/cookies"
	"github.com/xpzouying/bilibili-danmaku/danmaku"
	"github.com/xpzouying/bilibili-danmaku/pkg/bilibili"
	"github.com/xpzouying/bilibili-danmaku/pkg/dmxml"
)

// DanmakuService 弹幕下载服务
type DanmakuService struct {
	client        *bilibili.Client
	webhookSender *WebhookSender
	cookiePath    string
}

// NewDanmakuService 创建服务实例。
// cookie 文件存在就加载进客户端；没有 cookies 也能工作，只是更容易被 412 拦截。
func NewDanmakuService(cookiePath string) *DanmakuService {
	client := bilibili.NewClient()

	cookieLoader := cookies.NewLoadCookie(cookiePath)
	if cs, err := cookieLoader.LoadCookies(); err != nil {
		logrus.Warnf("未加载 cookies（%v），历史弹幕可能需要登录", err)
	} else {
		client.SetCookies(cs)
		logrus.Infof("已从 %s 加载 %d 条 cookies", cookiePath, len(cs))
	}

	return &DanmakuService{
		client:        client,
		webhookSender: NewWebhookSender(),
		cookiePath:    cookiePath,
	}
}

// DownloadResult 一次下载的结果
type DownloadResult struct {
	Cid      int64  `json:"cid"`
	Total    int    `json:"total"`
	FilePath string `json:"file_path"`
}

// DownloadDanmaku 下载一个 cid 的完整弹幕并写出 XML 文件。
// 弹幕为空时返回错误，不生成文件。
func (s *DanmakuService) DownloadDanmaku(ctx context.Context, req *DownloadRequest) (*DownloadResult, error) {
	opts := danmaku.Options{
		StartDays: req.StartDays,
		EndDays:   1,
	}
	if req.PublishDate != "" {
		publishDate, err := time.ParseInLocation("2006-01-02", req.PublishDate, time.Local)
		if err != nil {
			return nil, errors.Wrap(err, "publish_date 格式应为 YYYY-MM-DD")
		}
		opts.PublishDate = publishDate
	}
	if req.EndDays != nil {
		opts.EndDays = *req.EndDays
	} else if opts.PublishDate.IsZero() {
		opts.EndDays = -1
	}

	logrus.Infof("开始下载 CID %d 的完整弹幕...", req.Cid)
	if !opts.PublishDate.IsZero() {
		logrus.Infof("视频发布日期: %s", opts.PublishDate.Format("2006-01-02"))
	}

	list := danmaku.NewDownloader(s.client).Download(ctx, req.Cid, opts)
	if len(list) == 0 {
		return nil, errors.New("未获取到任何弹幕")
	}

	// 打一条样例，长弹幕按显示宽度截断
	logrus.Infof("样例: %s", runewidth.Truncate(list[0].Content, 40, "..."))

	path := req.Output
	if path == "" {
		path = fmt.Sprintf("danmaku_%d_%s.xml", req.Cid, time.Now().Format("20060102_150405"))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "创建输出文件失败")
	}
	defer f.Close()

	if err := dmxml.Write(f, req.Cid, list, time.Now()); err != nil {
		return nil, err
	}

	logrus.Infof("弹幕已保存到: %s", path)
	return &DownloadResult{
		Cid:      req.Cid,
		Total:    len(list),
		FilePath: path,
	}, nil
}

// CheckLoginStatus 检查登录状态
func (s *DanmakuService) CheckLoginStatus(ctx context.Context) (*LoginStatusResponse, error) {
	info, err := s.client.UserInfo(ctx)
	if err != nil {
		logrus.Warnf("登录状态检查失败: %v", err)
		return &LoginStatusResponse{IsLoggedIn: false}, nil
	}

	return &LoginStatusResponse{
		IsLoggedIn: true,
		Username:   info.Name,
	}, nil
}

// GetVideoList 获取 UP 主的一页投稿视频
func (s *DanmakuService) GetVideoList(ctx context.Context, mid string, page int) (*VideoListResponse, error) {
	videos, err := s.client.Videos(ctx, mid, page)
	if err != nil {
		return nil, err
	}

	return &VideoListResponse{
		Videos: videos,
		Count:  len(videos),
	}, nil
}

// DeleteCookies 删除 cookies 文件，用于登录重置
func (s *DanmakuService) DeleteCookies(ctx context.Context) error {
	return cookies.NewLoadCookie(s.cookiePath).DeleteCookies()
}
