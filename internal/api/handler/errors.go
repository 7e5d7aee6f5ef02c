package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"kutechnest/backend/internal/moderation"
	pkgerrors "kutechnest/backend/pkg/errors"
	"kutechnest/backend/pkg/response"
)

// 审核未通过：HTTP 400，data 携带审核结论
const codeModerationRejected = 20601

// respondError 统一将 service 层错误映射为 HTTP 响应
func respondError(c *gin.Context, err error) {
	if rejected, ok := moderation.AsRejected(err); ok {
		response.ErrorWithData(c, http.StatusBadRequest, codeModerationRejected, "内容未通过审核", rejected.Verdict)
		return
	}

	var bizErr *pkgerrors.Error
	if errors.As(err, &bizErr) {
		if bizErr.Kind == pkgerrors.KindInternal {
			_ = c.Error(err)
			response.InternalError(c)
			return
		}
		response.Error(c, bizErr.Kind.HTTPStatus(), bizErr.Code, bizErr.Message)
		return
	}

	_ = c.Error(err)
	response.InternalError(c)
}

// respondBindError 请求绑定失败：字段校验错误返回 字段 -> 说明
func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describeFieldError(fe)
		}
		response.ValidationFailed(c, fields)
		return
	}

	response.BadRequest(c, 10001, "请求格式错误")
}

// useJSONFieldNames 让校验错误以 json/form 标签名报告字段
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填"
	case "email":
		return "邮箱格式不正确"
	case "url":
		return "URL 格式不正确"
	case "uuid":
		return "ID 格式不正确"
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		return fmt.Sprintf("不能超过 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("取值须为 %s 之一", fe.Param())
	default:
		return fmt.Sprintf("校验失败（%s）", fe.Tag())
	}
}
