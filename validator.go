package webhookauth

import (
	"context"
	"net/http"

	"github.com/cmstar/go-logx"
)

// Validator 校验请求是否来自持有 auth token 的一方。
// Validator 只持有不可变的配置，可被任意多个请求并发使用。
type Validator struct {
	config    Config
	logFinder logx.LogFinder
	logger    ValidationLogger
}

// NewValidator 创建一个 [Validator] 。配置通过 [Config.Check] 校验，缺少 auth token 时返回 [ConfigError] 。
//
// logFinder 用于获取 Logger ，名称为 [LoggerName] ； logger 决定日志的内容，
// 如 logsetup.NewDefaultPipeline() 。二者任一为 nil 表示不记录日志。
func NewValidator(config Config, logFinder logx.LogFinder, logger ValidationLogger) (*Validator, error) {
	config, err := config.Check()
	if err != nil {
		return nil, err
	}

	return &Validator{
		config:    config,
		logFinder: logFinder,
		logger:    logger,
	}, nil
}

// MustNewValidator 是 [NewValidator] 的 panic 版本，用于在程序初始化阶段暴露配置错误。
func MustNewValidator(config Config, logFinder logx.LogFinder, logger ValidationLogger) *Validator {
	v, err := NewValidator(config, logFinder, logger)
	if err != nil {
		panic(err)
	}
	return v
}

// Config 返回补全了默认值的配置。
func (v *Validator) Config() Config {
	return v.config
}

// Validate 校验给定的请求。
//
// 对于表单请求，先读取 body （见 [CollectParams] ），之后依次执行：
//  1. 若开启了 [Config.AllowLocal] 且是本机请求（见 [IsLocal] ），返回 true ，不再校验签名。
//  2. 计算签名并与请求携带的签名比较，一致时返回 true ，否则返回 false 。
//
// 签名不一致不是错误，返回 false 和 nil 。读取 body 失败（包括 ctx 被取消）时返回 false 和 [RequestError] 。
func (v *Validator) Validate(ctx context.Context, r *http.Request) (bool, error) {
	state := &ValidationState{RawRequest: r}
	defer v.log(state)

	req, err := DescribeRequest(ctx, r, v.config)
	if err != nil {
		state.Error = err
		return false, err
	}

	state.Request = req
	v.check(state)
	return state.Valid, nil
}

// Check 对已构建好的 [Request] 执行校验，规则同 [Validator.Validate] 。此方法不会生成日志。
func (v *Validator) Check(req Request) bool {
	state := &ValidationState{Request: req}
	v.check(state)
	return state.Valid
}

func (v *Validator) check(state *ValidationState) {
	req := state.Request

	if v.config.AllowLocal && IsLocal(req.Header, req.Conn) {
		state.Gate = GateLocal
		state.Valid = true
		return
	}

	state.Gate = GateSignature
	state.CanonicalURL = CanonicalURL(req.Scheme, req.Host, req.Path, req.Query, v.config.BaseURLOverride)

	// 没有签名时不需要计算。
	if req.Signature == "" {
		return
	}

	expected := ComputeSignature(v.config.AuthToken, state.CanonicalURL, req.Params)
	state.Valid = CompareSignature(expected, req.Signature)
}

func (v *Validator) log(state *ValidationState) {
	if v.logFinder == nil || v.logger == nil {
		return
	}

	state.Logger = v.logFinder.Find(LoggerName)
	v.logger.Log(state)
}
