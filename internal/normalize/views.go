package normalize

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var viewCountPattern = regexp.MustCompile(`[\d,.]+[KMB]?`)

// FormatViewCount 将 "1,234,567 views" 之类的文本格式化为 "1.2M"
//
// 已带 K/M/B 单位的数值原样返回;无法解析时返回 "0"。
func FormatViewCount(raw string) string {
	token := viewCountPattern.FindString(raw)
	if token == "" {
		return "0"
	}

	token = strings.ReplaceAll(token, ",", "")
	if strings.ContainsAny(token, "KMB") {
		return token
	}

	// 只取整数部分
	digits, _, _ := strings.Cut(token, ".")
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "0"
	}

	switch {
	case n >= 1_000_000:
		return oneDecimal(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return oneDecimal(float64(n)/1_000) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// oneDecimal 按 x 的精确二进制值四舍五入到一位小数,恰好居中时向上取
//
// 1250/1000 恰为 1.25,得到 "1.3";1150/1000 的浮点值略小于 1.15,得到 "1.1"。
func oneDecimal(x float64) string {
	r := new(big.Rat).SetFloat64(x)
	r.Mul(r, big.NewRat(10, 1))
	r.Add(r, big.NewRat(1, 2))
	tenths := new(big.Int).Quo(r.Num(), r.Denom()).Int64()
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
