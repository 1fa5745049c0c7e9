package model

import "github.com/cockroachdb/errors"

// 错误分类，调用方使用 errors.Is 判断
var (
	ErrValidation          = errors.New("validation error")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrItemNotAvailable    = errors.New("item not available")
	ErrAlreadyClaimed      = errors.New("reward already claimed")
	ErrAlreadyClaimedToday = errors.New("daily reward already claimed today")
	ErrNotCompleted        = errors.New("mission not completed")
	ErrConflict            = errors.New("concurrent modification")
	ErrPersistence         = errors.New("persistence error")
	ErrNotFound            = errors.New("not found")
)

// Validationf 构造校验错误
func Validationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

// IsDomainError 业务终态错误，不重试
func IsDomainError(err error) bool {
	return errors.IsAny(err,
		ErrValidation,
		ErrInsufficientFunds,
		ErrItemNotAvailable,
		ErrAlreadyClaimed,
		ErrAlreadyClaimedToday,
		ErrNotCompleted,
	)
}
