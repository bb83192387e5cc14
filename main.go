package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/xpzouying/bilibili-danmaku/cookies"
	"github.com/xpzouying/bilibili-danmaku/pkg/bilibili"
)

func main() {
	var (
		login       bool
		serve       bool
		port        string
		publishDate string
		startDays   int
		endDays     int
		output      string
		cookiePath  string
	)
	flag.BoolVar(&login, "login", false, "登录 B 站账号（优先 cookies，失效则扫码）")
	flag.BoolVar(&serve, "serve", false, "以 HTTP 服务模式运行")
	flag.StringVar(&port, "port", ":18070", "服务模式的监听端口")
	flag.StringVar(&publishDate, "publish-date", "", "视频发布日期（YYYY-MM-DD），用于历史弹幕")
	flag.IntVar(&startDays, "start-days", 0, "从发布日期开始的天数（默认0）")
	flag.IntVar(&endDays, "end-days", 1, "到发布日期的天数（默认从发布日期+1天开始）")
	flag.StringVar(&output, "output", "", "输出文件路径（默认 danmaku_<cid>_<时间戳>.xml）")
	flag.StringVar(&cookiePath, "cookies", "", "cookies 文件路径")
	flag.Usage = usage
	flag.Parse()

	if cookiePath == "" {
		cookiePath = cookies.GetCookiesFilePath()
	}

	if login {
		client := bilibili.NewClient()
		loader := cookies.NewLoadCookie(cookiePath)
		if err := client.LoginWithCookie(context.Background(), loader); err == nil {
			logrus.Info("cookies 有效，无需重新登录")
			return
		}
		if err := client.LoginWithQRCode(context.Background(), loader); err != nil {
			logrus.Fatalf("登录失败: %v", err)
		}
		return
	}

	// 初始化服务
	danmakuService := NewDanmakuService(cookiePath)

	if serve {
		// 创建并启动应用服务器
		appServer := NewAppServer(danmakuService)
		if err := appServer.Start(port); err != nil {
			logrus.Fatalf("failed to run server: %v", err)
		}
		return
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	cid, err := strconv.ParseInt(flag.Arg(0), 10, 64)
	if err != nil {
		logrus.Fatalf("错误: CID 必须是数字: %s", flag.Arg(0))
	}

	req := &DownloadRequest{
		Cid:         cid,
		PublishDate: publishDate,
		StartDays:   startDays,
		EndDays:     &endDays,
		Output:      output,
	}

	result, err := danmakuService.DownloadDanmaku(context.Background(), req)
	if err != nil {
		logrus.Fatalf("下载失败: %v", err)
	}

	logrus.Infof("下载完成! 共 %d 条弹幕，已保存到 %s", result.Total, result.FilePath)
}

func usage() {
	fmt.Fprintf(os.Stderr, `用法: %s [选项] <cid>

选项:
  -publish-date YYYY-MM-DD  指定视频发布日期（启用历史弹幕）
  -start-days N             从发布日期开始的天数（默认0）
  -end-days N               到发布日期的天数（默认从发布日期+1天开始）
  -output FILE              输出文件路径
  -cookies FILE             cookies 文件路径（默认 cookies.json，可用 COOKIES_PATH 环境变量）
  -login                    登录 B 站账号（优先 cookies，失效则扫码）
  -serve                    以 HTTP 服务模式运行
  -port :PORT               服务模式的监听端口（默认 :18070）

示例:
  %[1]s 123456789
  %[1]s -publish-date 2023-01-01 123456789
  %[1]s -publish-date 2023-01-01 -start-days 0 -end-days 30 123456789
`, os.Args[0])
}
