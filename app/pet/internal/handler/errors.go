package handler

import (
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/web"
	weberrors "github.com/lk2023060901/petlink/pkg/web/errors"
)

// 宠物业务错误码
const (
	CodeItemNotAvailable    = 40402
	CodeAlreadyClaimed      = 40902
	CodeAlreadyClaimedToday = 40903
	CodeNotCompleted        = 40904
)

// errorCode 将领域错误映射为业务错误码
func errorCode(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return weberrors.CodeInvalidParams
	case errors.Is(err, model.ErrInsufficientFunds):
		return weberrors.CodePaymentRequired
	case errors.Is(err, model.ErrItemNotAvailable):
		return CodeItemNotAvailable
	case errors.Is(err, model.ErrNotFound):
		return weberrors.CodeNotFound
	case errors.Is(err, model.ErrAlreadyClaimedToday):
		return CodeAlreadyClaimedToday
	case errors.Is(err, model.ErrAlreadyClaimed):
		return CodeAlreadyClaimed
	case errors.Is(err, model.ErrNotCompleted):
		return CodeNotCompleted
	case errors.Is(err, model.ErrConflict):
		return weberrors.CodeConflict
	case errors.Is(err, model.ErrPersistence):
		return weberrors.CodeServiceUnavailable
	default:
		return weberrors.CodeInternalError
	}
}

// fail 写出错误响应，非业务错误记录日志并隐藏细节
func (h *PetHandler) fail(c *gin.Context, err error) {
	code := errorCode(err)
	if code >= weberrors.CodeInternalError {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(),
			"user_id", currentUser(c),
			"error", err,
		)
		web.Error(c, code, "service temporarily unavailable")
		return
	}
	web.Error(c, code, err.Error())
}
