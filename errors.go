package webhookauth

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cmstar/go-errx"
	"github.com/cmstar/go-logx"
)

/*
当前文件提供校验过程中的错误类型及处理错误的方法。
签名不匹配不是错误，只体现为校验结果 false 。
*/

// describedError 用作其他错误的内嵌结构。
type describedError struct {
	errx.ErrorCause

	Message string // Message 记录错误的描述信息。
}

var _ error = (*describedError)(nil)

// Error 实现 error 接口。
func (e describedError) Error() string {
	return e.Message
}

// Unwrap 返回引起此错误的错误，以支持 errors.Is() 和 errors.As() 。
func (e describedError) Unwrap() error {
	return e.Err
}

func newDescribedError(cause error, message string, args ...any) describedError {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	if cause != nil {
		if message != "" {
			message += ":: "
		}
		message += cause.Error()
	}

	return describedError{
		ErrorCause: errx.ErrorCause{Err: cause},
		Message:    message,
	}
}

// ConfigError 表示配置有误，如缺少 auth token 。
// 这类错误应在解析配置或创建 [Validator] 时立即暴露，而不是推迟到每个请求中变成校验失败。
type ConfigError struct {
	describedError
}

// CreateConfigError 创建一个 [ConfigError] 。
// message 和 args 指定描述信息，使用 fmt.Sprintf() 格式化。 cause 是引起此错误的错误，可以为 nil 。
// message 会体现在 Error() ，格式为：
//
//	message:: cause.Error()
func CreateConfigError(cause error, message string, args ...any) ConfigError {
	return ConfigError{newDescribedError(cause, message, args...)}
}

// RequestError 表示无法完成对请求的校验，如读取 body 时发生 I/O 错误、请求被取消、
// body 超出长度限制、表单格式错误等。出现此错误时，校验结果总是 false 。
type RequestError struct {
	describedError
}

// CreateRequestError 创建一个 [RequestError] 。参数的用法同 [CreateConfigError] 。
func CreateRequestError(cause error, message string, args ...any) RequestError {
	return RequestError{newDescribedError(cause, message, args...)}
}

// DescribeError 根据给定的错误，返回错误的日志级别、名称和错误描述。 如果 err 为 nil ，返回 logx.LevelInfo 和空字符串。
// 描述信息使用 errx.Describe() 获取。
func DescribeError(err error) (logLevel logx.Level, errTypeName, errDescription string) {
	if err == nil {
		return logx.LevelInfo, "", ""
	}

	errTypeName = getErrTypeName(err)
	errDescription = errx.Describe(err)

	logLevel = logx.LevelError

	var requestErr RequestError
	var configErr ConfigError
	switch {
	case errors.As(err, &requestErr):
		// 来自外部请求，不代表程序有问题。
		logLevel = logx.LevelWarn
	case errors.As(err, &configErr):
		logLevel = logx.LevelFatal
	}

	return
}

func getErrTypeName(err error) string {
	typ := reflect.TypeOf(err)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	name := typ.Name()

	// 公开类型（首字母大写）直接用其名称。
	if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
		return name
	}

	if _, ok := err.(errx.StackfulError); ok {
		return "StackfulError"
	}
	return name
}
