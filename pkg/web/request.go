package web

import (
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/petlink/pkg/web/errors"
)

// BindAndValidate 绑定请求参数并进行校验，失败时已写出响应
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		var errs validator.ValidationErrors
		if stderrors.As(err, &errs) {
			Error(c, errors.CodeInvalidParams, errs.Error())
			return false
		}
		Error(c, errors.CodeInvalidParams, "invalid request parameters: "+err.Error())
		return false
	}
	return true
}

// GetQuery 获取查询参数，带默认值
func GetQuery(c *gin.Context, key, defaultValue string) string {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetQueryInt 获取整型查询参数，缺失或非法时返回默认值，并截断到 [min, max]
func GetQueryInt(c *gin.Context, key string, defaultValue, min, max int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
