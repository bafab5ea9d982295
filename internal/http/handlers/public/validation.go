package public

import (
	"errors"

	"github.com/fuguang-next/internal/constants"

	"github.com/go-playground/validator/v10"
)

const payTypeTag = "pay_type"

// RegisterValidators 注册前台请求使用的自定义校验规则
func RegisterValidators(v *validator.Validate) error {
	if v == nil {
		return errors.New("validator engine is nil")
	}
	return v.RegisterValidation(payTypeTag, func(fl validator.FieldLevel) bool {
		switch fl.Field().Int() {
		case constants.PayTypeAlipay:
			return true
		default:
			return false
		}
	})
}

// hasValidationTag 判断绑定错误是否由指定校验规则触发
func hasValidationTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
