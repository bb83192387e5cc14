package danmaku

import "strings"

// 弹幕接口返回的是 protobuf 二进制（DmSegMobileReply），这里只实现
// 需要的最小子集：顶层消息的 1 号字段是嵌套的弹幕消息，其余字段跳过。

// wire type，只处理 varint 和 length-delimited 两种
const (
	wireVarint = 0
	wireBytes  = 2
)

// decodeVarint 解码一个 varint（7 位一组，带续位）。
// 返回值和消费后的新偏移；数据在续位中途耗尽时返回已累积的部分。
func decodeVarint(data []byte, pos int) (uint64, int) {
	var result uint64
	shift := 0
	for pos < len(data) {
		b := data[pos]
		pos++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, pos
}

// DecodeSegment 解码一段弹幕响应，返回其中所有能识别的弹幕。
//
// 遇到未知 wire type 或越界的长度时停止解析当前消息，
// 已解出的弹幕原样返回，不向调用方抛错。
func DecodeSegment(data []byte) []*DanmakuElement {
	var list []*DanmakuElement

	pos := 0
	for pos < len(data) {
		tag, next := decodeVarint(data, pos)
		pos = next

		fieldNum := tag >> 3
		wireType := tag & 0x7

		if fieldNum == 1 && wireType == wireBytes {
			// elems 字段，嵌套的单条弹幕
			length, next := decodeVarint(data, pos)
			pos = next

			end := pos + int(length)
			if int(length) < 0 || end < pos || end > len(data) {
				// 长度越界，按截断处理：能解多少算多少
				end = len(data)
			}
			if elem, _ := decodeElement(data[pos:end]); elem != nil {
				list = append(list, elem)
			}
			pos = end
			continue
		}

		switch wireType {
		case wireVarint:
			_, pos = decodeVarint(data, pos)
		case wireBytes:
			length, next := decodeVarint(data, pos)
			pos = next + int(length)
			if int(length) < 0 || pos < next || pos > len(data) {
				pos = len(data)
			}
		default:
			// 未知 wire type，终止当前消息
			return list
		}
	}

	return list
}

// decodeElement 解码一条弹幕消息。
//
// 字段号映射：1=id 2=progress 3=mode 4=fontsize 5=color 8=ctime 9=weight
// 11=pool（varint）；6=midHash 7=content 12=idStr（length-delimited）。
// 未映射的字段跳过。遇到坏字段（长度越界、未知 wire type）时在该处截断，
// 返回已解析的部分并置 truncated；一个字段都没解出来时返回 nil。
func decodeElement(data []byte) (elem *DanmakuElement, truncated bool) {
	var (
		d    DanmakuElement
		seen bool
	)

	finish := func() *DanmakuElement {
		if !seen {
			return nil
		}
		return &d
	}

	pos := 0
	for pos < len(data) {
		tag, next := decodeVarint(data, pos)
		pos = next

		fieldNum := tag >> 3
		wireType := tag & 0x7

		switch wireType {
		case wireVarint:
			var v uint64
			v, pos = decodeVarint(data, pos)

			switch fieldNum {
			case 1:
				d.ID = int64(v)
			case 2:
				d.Progress = int64(v)
			case 3:
				d.Mode = int32(v)
			case 4:
				d.FontSize = int32(v)
			case 5:
				d.Color = int32(v)
			case 8:
				d.Ctime = int64(v)
			case 9:
				d.Weight = int32(v)
			case 11:
				d.Pool = int32(v)
			default:
				continue
			}
			seen = true

		case wireBytes:
			length, next := decodeVarint(data, pos)
			pos = next

			end := pos + int(length)
			if int(length) < 0 || end < pos || end > len(data) {
				return finish(), true
			}

			switch fieldNum {
			case 6:
				d.MidHash = decodeString(data[pos:end])
			case 7:
				d.Content = decodeString(data[pos:end])
			case 12:
				d.IDStr = decodeString(data[pos:end])
			default:
				pos = end
				continue
			}
			seen = true
			pos = end

		default:
			return finish(), true
		}
	}

	return finish(), false
}

// decodeString 宽松的 UTF-8 解码，非法字节直接丢弃而不是报错
func decodeString(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}
