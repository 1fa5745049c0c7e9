package errors

import "net/http"

// 业务错误码，前三位为对应的 HTTP 状态码
const (
	CodeOK                 = 0
	CodeInvalidParams      = 40001
	CodeUnAuthorized       = 40101
	CodePaymentRequired    = 40201
	CodeForbidden          = 40301
	CodeNotFound           = 40401
	CodeConflict           = 40901
	CodeRateLimited        = 42901
	CodeInternalError      = 50001
	CodeServiceUnavailable = 50301
)

// CodeToStatus 将业务错误码映射为 HTTP 状态码
func CodeToStatus(code int) int {
	if code == CodeOK {
		return http.StatusOK
	}
	status := code / 100
	if status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}
