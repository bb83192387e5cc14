package bvid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvToBv(t *testing.T) {
	assert.Equal(t, "BV1L9Uoa9EUx", AvToBv(111298867365120))
}

func TestBvToAv(t *testing.T) {
	got, err := BvToAv("BV1L9Uoa9EUx")
	require.NoError(t, err)
	assert.Equal(t, int64(111298867365120), got)
}

func TestRoundTrip(t *testing.T) {
	for _, aid := range []int64{1, 170001, 2271112, 111298867365120} {
		got, err := BvToAv(AvToBv(aid))
		require.NoError(t, err)
		assert.Equal(t, aid, got)
	}
}

func TestBvToAvInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "前缀错误", in: "AV1L9Uoa9EUx"},
		{name: "长度不足", in: "BV1L9Uoa"},
		{name: "非法字符", in: "BV1L9Uoa9E0x"}, // 0 不在字符表里
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BvToAv(tt.in)
			assert.Error(t, err)
		})
	}
}
