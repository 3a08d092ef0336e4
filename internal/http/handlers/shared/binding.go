package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/greencart/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorOnce sync.Once

// RegisterValidators 让 gin 的校验错误使用 json 字段名，并注册自定义规则
func RegisterValidators() {
	registerValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

// BindJSON 绑定请求体，失败时返回带字段细节的 400
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		RespondError(c, response.CodeBadRequest, FormatBindError(err), nil)
		return false
	}
	return true
}

// FormatBindError 把校验错误转换为可读的字段说明
func FormatBindError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		parts = append(parts, describeFieldError(fieldErr))
	}
	return strings.Join(parts, "; ")
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s: this field is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s", field, fieldErr.Param())
	case "max", "lte":
		return fmt.Sprintf("%s: must be at most %s", field, fieldErr.Param())
	case "email":
		return fmt.Sprintf("%s: enter a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, fieldErr.Param())
	case "eqfield":
		return fmt.Sprintf("%s: must match %s", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s: invalid value", field)
	}
}
