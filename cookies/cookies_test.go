package cookies

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	c := NewLoadCookie(path)

	want := map[string]string{
		"SESSDATA":   "abc%2Cdef",
		"DedeUserID": "67390259",
		"bili_jct":   "deadbeef",
	}
	require.NoError(t, c.SaveCookies(want))

	got, err := c.LoadCookies()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadCookiesMissingFile(t *testing.T) {
	c := NewLoadCookie(filepath.Join(t.TempDir(), "nope.json"))
	_, err := c.LoadCookies()
	assert.Error(t, err)
}

func TestDeleteCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	c := NewLoadCookie(path)

	require.NoError(t, c.SaveCookies(map[string]string{"k": "v"}))
	require.NoError(t, c.DeleteCookies())

	// 再删一次也不报错
	assert.NoError(t, c.DeleteCookies())
}
