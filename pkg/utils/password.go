package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// 与线上存量哈希保持一致的工作因子
const BcryptCost = 12

// HashPassword 生成加盐哈希；同一明文每次结果不同，只能用 CheckPassword 验证
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 密码不匹配返回 (false, nil)；error 只在存储的哈希本身格式损坏时非 nil
func CheckPassword(pw, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		// ErrHashTooShort / HashVersionTooNewError 等：哈希格式问题
		return false, err
	}
}
