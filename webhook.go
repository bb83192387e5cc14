package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// WebhookPayload webhook 发送的数据结构
type WebhookPayload struct {
	Result    any    `json:"result"`    // 下载结果
	Timestamp int64  `json:"timestamp"` // 发送时间戳
	Event     string `json:"event"`     // 事件类型（download_done/download_failed）
}

// WebhookSender webhook 发送器
type WebhookSender struct {
	client  *http.Client
	timeout time.Duration
}

// NewWebhookSender 创建 webhook 发送器
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		timeout: 10 * time.Second,
	}
}

// SendAsync 异步发送 webhook。
// 失败只记录日志，不影响下载结果；自带 panic 恢复。
func (w *WebhookSender) SendAsync(webhookURL string, result any, eventType string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("webhook panic: %v", r)
			}
		}()

		if err := w.send(webhookURL, result, eventType); err != nil {
			logrus.Errorf("webhook 发送失败 [%s]: %v", webhookURL, err)
		} else {
			logrus.Infof("webhook 发送成功 [%s]", webhookURL)
		}
	}()
}

// send 实际发送 webhook（同步）
func (w *WebhookSender) send(webhookURL string, result any, eventType string) error {
	if err := w.validateURL(webhookURL); err != nil {
		return fmt.Errorf("无效的 webhook URL: %w", err)
	}

	payload := WebhookPayload{
		Result:    result,
		Timestamp: time.Now().Unix(),
		Event:     eventType,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化 payload 失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook 返回异常状态码: %d", resp.StatusCode)
	}

	return nil
}

// validateURL 校验 webhook URL
func (w *WebhookSender) validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("缺少主机名")
	}
	return nil
}
