package bilibili

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/xpzouying/bilibili-danmaku/pkg/bvid"
)

// Video UP 主投稿列表里的一个视频
type Video struct {
	Aid         int64  `json:"aid"`
	Bvid        string `json:"bvid"`
	Title       string `json:"title"`
	Pic         string `json:"pic"`
	Description string `json:"description"`
	Created     int64  `json:"created"`
}

type arcSearchResponse struct {
	Code int `json:"code"`
	Data struct {
		List struct {
			Vlist []Video `json:"vlist"`
		} `json:"list"`
		Page struct {
			Count int `json:"count"`
			Pn    int `json:"pn"`
			Ps    int `json:"ps"`
		} `json:"page"`
	} `json:"data"`
}

// Videos 拉取 UP 主的一页投稿视频（WBI 签名接口），按发布时间倒序
func (c *Client) Videos(ctx context.Context, mid string, page int) ([]Video, error) {
	mixin, err := c.MixinKey(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("mid", mid)
	params.Set("pn", strconv.Itoa(page))
	params.Set("ps", "30")
	params.Set("order", "pubdate")
	signed := signWbi(params, mixin, time.Now().Unix())

	var resp arcSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/x/space/wbi/arc/search?"+signed.Encode(), &resp); err != nil {
		return nil, errors.Wrap(err, "获取投稿列表失败")
	}
	if resp.Code != 0 {
		return nil, errors.Errorf("获取投稿列表失败: code=%d", resp.Code)
	}

	videos := resp.Data.List.Vlist
	for i := range videos {
		// 部分旧接口只带 aid，不带 bvid
		if videos[i].Bvid == "" && videos[i].Aid > 0 {
			videos[i].Bvid = bvid.AvToBv(videos[i].Aid)
		}
	}
	return videos, nil
}
