package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// PrependUnique 將值放到最前面並移除重複，最多保留 limit 筆（limit <= 0 不限制）
func PrependUnique(list []string, value string, limit int) []string {
	next := make([]string, 0, len(list)+1)
	next = append(next, value)
	for _, v := range list {
		if v != value {
			next = append(next, v)
		}
	}
	if limit > 0 && len(next) > limit {
		next = next[:limit]
	}
	return next
}

// CollapseSpaces 合併連續空白並去除首尾空白
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
