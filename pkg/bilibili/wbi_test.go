package bilibili

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixinKeyShuffle(t *testing.T) {
	// 64 个可区分的字符，逐位核对置换表
	img := "0123456789abcdefghijklmnopqrstuv"
	sub := "wxyzABCDEFGHIJKLMNOPQRSTUVWXYZ+/"

	got := mixinKey(img, sub)
	assert.Len(t, got, 32)
	assert.Equal(t, "KLi2R8nwfOavW3JzrH5Nx9GjtseDcCFd", got)
}

func TestSignWbi(t *testing.T) {
	params := url.Values{}
	params.Set("mid", "67390259")
	params.Set("foo", "one!two'three*")

	signed := signWbi(params, "ea1db124af3c7062474693fa704f4ff8", 1702204169)

	assert.Equal(t, "1702204169", signed.Get("wts"))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), signed.Get("w_rid"))
	// 值里的 !'()* 被剔除
	assert.Equal(t, "onetwothree", signed.Get("foo"))
}

func TestSignWbiDeterministic(t *testing.T) {
	p1 := url.Values{"mid": {"1"}}
	p2 := url.Values{"mid": {"1"}}
	p3 := url.Values{"mid": {"2"}}

	s1 := signWbi(p1, "key", 100)
	s2 := signWbi(p2, "key", 100)
	s3 := signWbi(p3, "key", 100)

	assert.Equal(t, s1.Get("w_rid"), s2.Get("w_rid"))
	assert.NotEqual(t, s1.Get("w_rid"), s3.Get("w_rid"))
}

func TestMixinKeyFromNav(t *testing.T) {
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/x/web-interface/nav", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{
				"wbi_img": map[string]any{
					"img_url": "https://i0.hdslb.com/bfs/wbi/0123456789abcdefghijklmnopqrstuv.png",
					"sub_url": "https://i0.hdslb.com/bfs/wbi/wxyzABCDEFGHIJKLMNOPQRSTUVWXYZ+Z.png",
				},
			},
		})
	}))
	defer server.Close()

	key, err := c.MixinKey(context.Background())
	require.NoError(t, err)
	assert.Len(t, key, 32)

	// 第二次走缓存，不再请求
	server.Close()
	cached, err := c.MixinKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key, cached)
}

func TestAppSign(t *testing.T) {
	p1 := url.Values{"appkey": {appKey}, "local_id": {"0"}, "ts": {"100"}}
	p2 := url.Values{"ts": {"100"}, "local_id": {"0"}, "appkey": {appKey}}

	// 与参数插入顺序无关
	assert.Equal(t, appSign(p1), appSign(p2))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), appSign(p1))
}
