package main

import "github.com/xpzouying/bilibili-danmaku/pkg/bilibili"

// HTTP API 响应类型

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// DownloadRequest 下载弹幕请求
type DownloadRequest struct {
	Cid         int64  `json:"cid" binding:"required"`
	PublishDate string `json:"publish_date,omitempty"` // YYYY-MM-DD，缺省时跳过历史弹幕
	StartDays   int    `json:"start_days,omitempty"`
	EndDays     *int   `json:"end_days,omitempty"`
	Output      string `json:"output,omitempty"`
	Webhook     string `json:"webhook,omitempty"` // 可选：下载完成后回调的 URL
}

// LoginStatusResponse 登录状态响应
type LoginStatusResponse struct {
	IsLoggedIn bool   `json:"is_logged_in"`
	Username   string `json:"username,omitempty"`
}

// VideoListResponse 投稿视频列表响应
type VideoListResponse struct {
	Videos []bilibili.Video `json:"videos"`
	Count  int              `json:"count"`
}
