package util

import (
	"fmt"
	"strconv"
)

// ParsePositiveInt 解析路径参数，要求为正整数
func ParsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid positive integer %q", s)
	}
	return n, nil
}
