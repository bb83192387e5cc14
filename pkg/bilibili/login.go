package bilibili

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xpzouying/bilibili-danmaku/cookies"
)

// TV 端登录接口的 appkey/appsec
const (
	appKey    = "4409e2ce8ffd12b8"
	appSecret = "59b43e04ad6965f34319062b478f83dd"

	qrcodePollInterval = 3 * time.Second
)

// UserInfo 当前登录用户信息
type UserInfo struct {
	Mid      string
	Name     string
	Level    int
	Coins    float64
	Silence  int
	LiveRoom map[string]any
}

// LoginWithCookie 从 cookie 文件加载登录态，并通过拉取用户信息验证有效性
func (c *Client) LoginWithCookie(ctx context.Context, loader cookies.Cookier) error {
	cs, err := loader.LoadCookies()
	if err != nil {
		return errors.Wrap(err, "使用 cookie 登录失败")
	}
	c.SetCookies(cs)

	info, err := c.UserInfo(ctx)
	if err != nil {
		return errors.Wrap(err, "使用 cookie 登录失败")
	}

	logUserInfo(info)
	logrus.Info("使用 cookie 登录成功")
	return nil
}

type accInfoResponse struct {
	Code int `json:"code"`
	Data struct {
		Name     string         `json:"name"`
		Level    int            `json:"level"`
		Coins    float64        `json:"coins"`
		Silence  int            `json:"silence"`
		LiveRoom map[string]any `json:"live_room"`
	} `json:"data"`
}

// UserInfo 拉取当前用户信息（WBI 签名接口），可用来验证登录态
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	mid := c.UID()
	if mid == "" {
		return nil, errors.New("cookies 中没有 DedeUserID")
	}

	mixin, err := c.MixinKey(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("mid", mid)
	signed := signWbi(params, mixin, time.Now().Unix())

	var resp accInfoResponse
	if err := c.getJSON(ctx, c.baseURL+"/x/space/wbi/acc/info?"+signed.Encode(), &resp); err != nil {
		return nil, errors.Wrap(err, "获取用户信息失败")
	}
	if resp.Code != 0 {
		return nil, errors.Errorf("获取用户信息失败: code=%d", resp.Code)
	}

	return &UserInfo{
		Mid:      mid,
		Name:     resp.Data.Name,
		Level:    resp.Data.Level,
		Coins:    resp.Data.Coins,
		Silence:  resp.Data.Silence,
		LiveRoom: resp.Data.LiveRoom,
	}, nil
}

func logUserInfo(info *UserInfo) {
	status := "状态正常"
	if info.Silence != 0 {
		status = "被封禁"
	}
	logrus.Infof("%s(UID=%s)，Lv.%d，拥有 %.0f 枚硬币，账号%s",
		info.Name, info.Mid, info.Level, info.Coins, status)
}

type qrcodeAuthResponse struct {
	Code int `json:"code"`
	Data struct {
		URL      string `json:"url"`
		AuthCode string `json:"auth_code"`
	} `json:"data"`
}

type qrcodePollResponse struct {
	Code int `json:"code"`
	Data struct {
		CookieInfo struct {
			Cookies []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"cookies"`
		} `json:"cookie_info"`
	} `json:"data"`
}

// LoginWithQRCode 扫码登录：终端打印二维码，轮询确认后保存 cookies
func (c *Client) LoginWithQRCode(ctx context.Context, loader cookies.Cookier) error {
	form := url.Values{}
	form.Set("appkey", appKey)
	form.Set("local_id", "0")
	form.Set("ts", fmt.Sprintf("%d", time.Now().Unix()))
	form.Set("sign", appSign(form))

	var auth qrcodeAuthResponse
	if err := c.postForm(ctx, c.passportURL+"/x/passport-tv-login/qrcode/auth_code", form, &auth); err != nil {
		return errors.Wrap(err, "获取二维码失败")
	}
	if auth.Code != 0 || auth.Data.URL == "" {
		return errors.Errorf("获取二维码失败: code=%d", auth.Code)
	}

	qrterminal.GenerateWithConfig(auth.Data.URL, qrterminal.Config{
		Level:      qrterminal.L,
		Writer:     os.Stdout,
		HalfBlocks: true,
		QuietZone:  1,
	})
	logrus.Info("请扫描二维码登录")

	form = url.Values{}
	form.Set("appkey", appKey)
	form.Set("local_id", "0")
	form.Set("ts", fmt.Sprintf("%d", time.Now().Unix()))
	form.Set("auth_code", auth.Data.AuthCode)
	form.Set("sign", appSign(form))

	// 轮询登录状态
	var poll qrcodePollResponse
	for {
		if err := c.postForm(ctx, c.passportURL+"/x/passport-tv-login/qrcode/poll", form, &poll); err == nil && poll.Code == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "等待扫码超时")
		case <-time.After(qrcodePollInterval):
		}
	}

	cs := make(map[string]string, len(poll.Data.CookieInfo.Cookies))
	for _, ck := range poll.Data.CookieInfo.Cookies {
		cs[ck.Name] = ck.Value
	}
	if err := loader.SaveCookies(cs); err != nil {
		return errors.Wrap(err, "保存 cookies 失败")
	}
	c.SetCookies(cs)

	if info, err := c.UserInfo(ctx); err == nil {
		logUserInfo(info)
	}
	logrus.Info("使用二维码登录成功")
	return nil
}

// appSign TV 端接口的 app 签名：md5(按键名排序的查询串 + appsec)
func appSign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, url.QueryEscape(params.Get(k))))
	}
	query := strings.Join(parts, "&")
	return fmt.Sprintf("%x", md5.Sum([]byte(query+appSecret)))
}
