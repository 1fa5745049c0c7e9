package engine

import (
	"strings"
	"unicode"
)

// MaxNameLength 宠物名最大字符数
const MaxNameLength = 32

// normalizeName 去除首尾空白并移除控制字符
func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
}
