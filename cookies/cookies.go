package cookies

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Cookier cookies 的读写接口。
// 文件内容是 name → value 的 JSON 对象，和登录接口返回的 cookie_info 对应。
type Cookier interface {
	LoadCookies() (map[string]string, error)
	SaveCookies(cookies map[string]string) error
	DeleteCookies() error
}

type localCookie struct {
	path string
}

// NewLoadCookie 创建基于本地文件的 cookie 读写器
func NewLoadCookie(path string) Cookier {
	if path == "" {
		panic("path is required")
	}

	return &localCookie{
		path: path,
	}
}

// LoadCookies 从文件中加载 cookies。
func (c *localCookie) LoadCookies() (map[string]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cookies file")
	}

	var cookies map[string]string
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errors.Wrap(err, "failed to parse cookies file")
	}

	return cookies, nil
}

// SaveCookies 保存 cookies 到文件中。
func (c *localCookie) SaveCookies(cookies map[string]string) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal cookies")
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "failed to create cookies dir")
		}
	}

	return os.WriteFile(c.path, data, 0644)
}

// DeleteCookies 删除 cookies 文件。
func (c *localCookie) DeleteCookies() error {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		// 文件不存在，认为已经删除
		return nil
	}
	return os.Remove(c.path)
}

// GetCookiesFilePath 获取 cookies 文件路径。
// 优先使用环境变量 COOKIES_PATH，否则用当前目录下的 cookies.json
func GetCookiesFilePath() string {
	if path := os.Getenv("COOKIES_PATH"); path != "" {
		return path
	}
	return "cookies.json"
}
