package response

// AppError 带 i18n key 的业务错误
type AppError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewKeyedError 构造业务错误，message 为已翻译文案
func NewKeyedError(code int, key, message string, err error) *AppError {
	if message == "" {
		message = key
	}
	return &AppError{
		Code:    code,
		Key:     key,
		Message: message,
		Err:     err,
	}
}
