// Package bvid 实现 B 站 av 号和 BV 号的互转。
// 算法参考 https://github.com/SocialSisterYi/bilibili-API-collect
package bvid

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	xorCode  = 23442827791579
	maskCode = 2251799813685247
	maxAid   = 1 << 51

	alphabet = "FcwAPNKTMug3GV5Lj7EJnHpWsx4tb8haYeviqBz6rkCy12mUSDQX9RdoZf"
	prefix   = "BV1"
)

var (
	encodeMap = [9]int{8, 7, 0, 5, 1, 3, 2, 4, 6}
	decodeMap = [9]int{6, 4, 2, 3, 1, 5, 0, 7, 8}
)

// AvToBv av 号转 BV 号
func AvToBv(aid int64) string {
	var code [9]byte
	tmp := (maxAid | aid) ^ xorCode
	for i := 0; i < len(encodeMap); i++ {
		code[encodeMap[i]] = alphabet[tmp%int64(len(alphabet))]
		tmp /= int64(len(alphabet))
	}
	return prefix + string(code[:])
}

// BvToAv BV 号转 av 号
func BvToAv(bvid string) (int64, error) {
	if !strings.HasPrefix(bvid, prefix) || len(bvid) != len(prefix)+len(encodeMap) {
		return 0, errors.Errorf("无效的 BV 号: %s", bvid)
	}

	code := bvid[len(prefix):]
	var tmp int64
	for i := 0; i < len(decodeMap); i++ {
		idx := strings.IndexByte(alphabet, code[decodeMap[i]])
		if idx < 0 {
			return 0, errors.Errorf("BV 号包含非法字符: %c", code[decodeMap[i]])
		}
		tmp = tmp*int64(len(alphabet)) + int64(idx)
	}
	return (tmp & maskCode) ^ xorCode, nil
}
