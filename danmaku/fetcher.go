package danmaku

import "context"

// Response 上游接口的一次原始应答。
// 传输层重试由 Fetcher 的实现负责，这里只拿到最终的状态码和原始字节。
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher 弹幕接口的抓取方。
//
// GetSegment 按分段序号取实时弹幕，GetHistory 按日期（YYYY-MM-DD）取历史弹幕，
// 两者返回的都是 protobuf 二进制，可能为空或被截断。
type Fetcher interface {
	GetSegment(ctx context.Context, oid int64, index int) (*Response, error)
	GetHistory(ctx context.Context, oid int64, date string) (*Response, error)
}
