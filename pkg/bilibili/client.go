// Package bilibili 封装弹幕下载需要用到的 B 站 API。
package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/bilibili-danmaku/danmaku"
)

const (
	defaultBaseURL  = "https://api.bilibili.com"
	defaultPassport = "https://passport.bilibili.com"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	requestTimeout = 10 * time.Second
	retryAttempts  = 5
)

// Client B 站 API 客户端。
// 持有 cookies 并给每个请求带上浏览器请求头；传输层失败最多重试 5 次，
// 重试仍失败时把错误交给上层，HTTP 状态码原样透传、不在这里解释。
type Client struct {
	httpClient *http.Client

	baseURL     string
	passportURL string

	cookies  map[string]string
	mixinKey string // WBI 混合密钥缓存
}

// NewClient 创建客户端
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL:     defaultBaseURL,
		passportURL: defaultPassport,
		cookies:     make(map[string]string),
	}
}

// SetCookies 整体替换 cookies
func (c *Client) SetCookies(cookies map[string]string) {
	if cookies == nil {
		cookies = make(map[string]string)
	}
	c.cookies = cookies
}

// UID 从 cookies 中取当前用户的 uid
func (c *Client) UID() string {
	return c.cookies["DedeUserID"]
}

// GetSegment 按分段序号取实时弹幕
func (c *Client) GetSegment(ctx context.Context, oid int64, index int) (*danmaku.Response, error) {
	u := fmt.Sprintf("%s/x/v2/dm/web/seg.so?type=1&oid=%d&segment_index=%d",
		c.baseURL, oid, index)
	return c.get(ctx, u)
}

// GetHistory 按日期（YYYY-MM-DD）取历史弹幕
func (c *Client) GetHistory(ctx context.Context, oid int64, date string) (*danmaku.Response, error) {
	u := fmt.Sprintf("%s/x/v2/dm/web/history/seg.so?type=1&date=%s&oid=%d",
		c.baseURL, date, oid)
	return c.get(ctx, u)
}

// get 发起一次 GET 请求，传输层失败自动重试。
// 只有网络层面的错误才会重试，非 200 状态码不算失败。
func (c *Client) get(ctx context.Context, rawURL string) (*danmaku.Response, error) {
	var resp *danmaku.Response

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "创建请求失败"))
			}
			c.applyHeaders(req)

			res, err := c.httpClient.Do(req)
			if err != nil {
				return errors.Wrap(err, "请求失败")
			}
			defer res.Body.Close()

			body, err := io.ReadAll(res.Body)
			if err != nil {
				return errors.Wrap(err, "读取响应失败")
			}

			resp = &danmaku.Response{
				StatusCode: res.StatusCode,
				Body:       body,
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logrus.Warnf("请求失败（尝试 %d/%d）: %v", n+1, retryAttempts, err)
		}),
	)
	if err != nil {
		logrus.Errorf("最终请求失败: %s", rawURL)
		return nil, err
	}

	return resp, nil
}

// getJSON 请求 JSON 接口并解析到 out
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("接口返回 HTTP %d: %s", resp.StatusCode, rawURL)
	}
	return errors.Wrap(json.Unmarshal(resp.Body, out), "解析响应失败")
}

// postForm 向 passport 接口提交表单并解析 JSON 响应
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, out any) error {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL,
				strings.NewReader(form.Encode()))
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "创建请求失败"))
			}
			c.applyHeaders(req)
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			res, err := c.httpClient.Do(req)
			if err != nil {
				return errors.Wrap(err, "请求失败")
			}
			defer res.Body.Close()

			body, err = io.ReadAll(res.Body)
			if err != nil {
				return errors.Wrap(err, "读取响应失败")
			}
			if res.StatusCode != http.StatusOK {
				return errors.Errorf("接口返回 HTTP %d", res.StatusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	return errors.Wrap(json.Unmarshal(body, out), "解析响应失败")
}

// applyHeaders 补上浏览器请求头和 cookies
func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://www.bilibili.com/")
	req.Header.Set("Origin", "https://www.bilibili.com")
	req.Header.Set("Accept", "application/x-protobuf, application/json, */*")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}
