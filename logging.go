package webhookauth

import (
	"net/http"

	"github.com/cmstar/go-logx"
)

// Gate 表示校验在哪一步得出结论。
type Gate string

const (
	GateNone      Gate = ""          // 未能完成校验，如读取 body 失败。
	GateLocal     Gate = "local"     // 本机请求，跳过了签名校验。
	GateSignature Gate = "signature" // 通过签名校验得出结论。
)

// ValidationState 记录一次校验的过程数据，用于生成日志。每次校验使用一个新的 ValidationState 。
type ValidationState struct {
	// RawRequest 是原始的 HTTP 请求。
	RawRequest *http.Request

	// Request 是从 RawRequest 构建的校验输入。若构建失败，为零值。
	Request Request

	// CanonicalURL 是计算签名时使用的 URL 。本机请求跳过签名校验时为空。
	CanonicalURL string

	// Gate 表示在哪一步得出结论。
	Gate Gate

	// Valid 是校验结果。
	Valid bool

	// Error 记录未能完成校验的原因。没有错误时为 nil 。
	Error error

	// Logger 用于接收日志。可以为 nil ，表示不记录日志。
	Logger logx.Logger

	// 输出日志时的日志级别。若为 0 ，则使用默认级别（由 [ValidationLogger] 决定）。
	LogLevel logx.Level

	// LogMessage 是 key-value 对，与 [logx.Logger.Log] 的 keyValues 参数定义一致。
	LogMessage []any
}

// ValidationLogger 在每次校验结束后生成日志。
type ValidationLogger interface {
	// Log 根据 ValidationState 的内容生成日志，日志由 ValidationState.Logger 接收。
	// 若 ValidationState.Logger 为 nil ，则不生成日志。
	Log(state *ValidationState)
}

// LogSetup 定义一个过程，此过程用于向 [ValidationState] 填充日志信息。
type LogSetup interface {
	// Setup 可将日志信息写入 [ValidationState.LogLevel] 和 [ValidationState.LogMessage] 。
	Setup(state *ValidationState)
}

// LogSetupFunc 是 [LogSetup.Setup] 的函数签名。
type LogSetupFunc func(state *ValidationState)

type logSetupWrap struct {
	f LogSetupFunc
}

// ToLogSetup 将 [LogSetupFunc] 包装成 [LogSetup] 。
func ToLogSetup(f LogSetupFunc) LogSetup {
	return logSetupWrap{f}
}

// Setup implements [LogSetup.Setup].
func (x logSetupWrap) Setup(state *ValidationState) {
	x.f(state)
}

// LogSetupPipeline 是 [LogSetup] 组成的管道，实现 [ValidationLogger] 。
//
// 在 [ValidationLogger.Log] 时，依次执行每个 [LogSetup.Setup] ，并将得到的 LogLevel 和 LogMessage 输出到日志。
// 若 LogLevel 未被设置，默认使用 [logx.LevelInfo] 级别。
type LogSetupPipeline []LogSetup

var _ ValidationLogger = (*LogSetupPipeline)(nil)

// NewLogSetupPipeline 返回一个 [LogSetupPipeline] 。
func NewLogSetupPipeline(s ...LogSetup) LogSetupPipeline {
	return LogSetupPipeline(s)
}

// Log implements [ValidationLogger.Log].
func (p LogSetupPipeline) Log(state *ValidationState) {
	logger := state.Logger
	if logger == nil || len(p) == 0 {
		return
	}

	for _, v := range p {
		v.Setup(state)
	}

	lv := state.LogLevel
	if state.LogLevel == 0 {
		lv = logx.LevelInfo
	}

	logger.Log(lv, "webhook validation", state.LogMessage...)
}
