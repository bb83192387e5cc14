package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError 返回错误响应
func respondError(c *gin.Context, statusCode int, code, message string, details any) {
	response := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}

	logrus.Errorf("%s %s %d", c.Request.Method, c.Request.URL.Path, statusCode)

	c.JSON(statusCode, response)
}

// respondSuccess 返回成功响应
func respondSuccess(c *gin.Context, data any, message string) {
	response := SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	}

	logrus.Infof("%s %s %d", c.Request.Method, c.Request.URL.Path, http.StatusOK)

	c.JSON(http.StatusOK, response)
}

// healthHandler 健康检查
func healthHandler(c *gin.Context) {
	respondSuccess(c, map[string]any{
		"status":    "healthy",
		"service":   "bilibili-danmaku",
		"timestamp": time.Now().Format(time.RFC3339),
	}, "服务正常")
}

// checkLoginStatusHandler 检查登录状态
func (s *AppServer) checkLoginStatusHandler(c *gin.Context) {
	status, err := s.danmakuService.CheckLoginStatus(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STATUS_CHECK_FAILED",
			"检查登录状态失败", err.Error())
		return
	}

	respondSuccess(c, status, "检查登录状态成功")
}

// downloadHandler 下载弹幕
//
// 同步模式：不带 webhook 参数时阻塞到下载完成，直接返回结果。
// 异步模式：带 webhook 参数时立即返回 202 Accepted，后台执行下载，
// 完成后通过 webhook 通知结果。历史弹幕多的视频一次下载可能要几分钟，
// 建议用异步模式。
func (s *AppServer) downloadHandler(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", err.Error())
		return
	}

	if req.Webhook == "" {
		result, err := s.danmakuService.DownloadDanmaku(c.Request.Context(), &req)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED",
				"下载弹幕失败", err.Error())
			return
		}
		respondSuccess(c, result, "下载弹幕成功")
		return
	}

	// 立即返回 202 Accepted
	c.JSON(http.StatusAccepted, SuccessResponse{
		Success: true,
		Data: map[string]any{
			"status":  "accepted",
			"cid":     req.Cid,
			"webhook": req.Webhook,
		},
		Message: "请求已接受，下载结果将通过 webhook 通知",
	})

	// 使用 channel 确保 goroutine 真正启动
	started := make(chan struct{})

	go func() {
		// 独立的 context，30 分钟超时（足够抓完历史弹幕）
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		close(started)

		logrus.Infof("开始异步下载弹幕 cid=%d，webhook: %s", req.Cid, req.Webhook)

		result, err := s.danmakuService.DownloadDanmaku(ctx, &req)
		if err != nil {
			logrus.Errorf("异步下载失败: %v", err)
			s.danmakuService.webhookSender.SendAsync(req.Webhook,
				map[string]any{"cid": req.Cid, "error": err.Error()}, "download_failed")
			return
		}

		s.danmakuService.webhookSender.SendAsync(req.Webhook, result, "download_done")
	}()

	// 等待异步任务真正启动（最多等待 100ms）
	select {
	case <-started:
	case <-time.After(100 * time.Millisecond):
		logrus.Warn("等待异步任务启动超时")
	}
}

// listVideosHandler 获取 UP 主的投稿视频列表
func (s *AppServer) listVideosHandler(c *gin.Context) {
	mid := c.Query("mid")
	if mid == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"请求参数错误", "缺少 mid 参数")
		return
	}

	page := 1
	if p := c.Query("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
				"请求参数错误", "page 必须是正整数")
			return
		}
		page = parsed
	}

	result, err := s.danmakuService.GetVideoList(c.Request.Context(), mid, page)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_VIDEOS_FAILED",
			"获取投稿列表失败", err.Error())
		return
	}

	respondSuccess(c, result, "获取投稿列表成功")
}

// deleteCookiesHandler 删除本地 cookies，重置登录态
func (s *AppServer) deleteCookiesHandler(c *gin.Context) {
	if err := s.danmakuService.DeleteCookies(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_COOKIES_FAILED",
			"删除 cookies 失败", err.Error())
		return
	}

	respondSuccess(c, nil, "已删除 cookies")
}
