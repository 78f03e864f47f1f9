package utils

import "github.com/google/uuid"

// NewID 生成不透明唯一 ID。只保证唯一，不保证生成顺序可排序，排序用时间戳字段
func NewID() string {
	return uuid.NewString()
}
