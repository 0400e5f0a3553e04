// Package logsetup 提供一组预定义的 [webhookauth.LogSetup] ，以便快速实现 [webhookauth.ValidationLogger] 。
//
// 这些过程都不会输出 auth token 和请求携带的签名。
package logsetup

import (
	"github.com/cmstar/go-logx"
	"github.com/cmstar/go-webhookauth"
)

// NewDefaultPipeline 返回默认的 [webhookauth.ValidationLogger] ，依次输出 IP 、 URL 、 Verdict 、 Error 。
func NewDefaultPipeline() webhookauth.LogSetupPipeline {
	return webhookauth.NewLogSetupPipeline(IP, URL, Verdict, Error)
}

// IP 输出发起 HTTP 请求的客户端 IP 地址，不带端口。地址无法解析时，输出 [http.Request.RemoteAddr] 的原文。
// 不读取 X-Forwarded-For 头。
//
// 输出字段为： IP 。
//
// 这是一个单例。
var IP = ip{}

type ip struct{}

var _ webhookauth.LogSetup = (*ip)(nil)

func (ip) Setup(state *webhookauth.ValidationState) {
	var host string
	if state.Request.Conn.RemoteIP != nil {
		host = state.Request.Conn.RemoteIP.String()
	} else if state.RawRequest != nil {
		if v := webhookauth.ParseHostIP(state.RawRequest.RemoteAddr); v != nil {
			host = v.String()
		} else {
			host = state.RawRequest.RemoteAddr
		}
	}

	state.LogMessage = append(state.LogMessage, "IP", host)
}

// URL 输出计算签名时使用的完整 URL 。跳过签名校验时，输出请求的 RequestURI 。
//
// 输出字段为： URL 。
//
// 这是一个单例。
var URL = url{}

type url struct{}

var _ webhookauth.LogSetup = (*url)(nil)

func (url) Setup(state *webhookauth.ValidationState) {
	v := state.CanonicalURL
	if v == "" && state.RawRequest != nil {
		v = state.RawRequest.RequestURI
	}
	state.LogMessage = append(state.LogMessage, "URL", v)
}

// Verdict 输出校验结果，以及得出结论的步骤。校验不通过时，日志级别为 [logx.LevelWarn] 。
//
// 输出字段为： Valid/Gate 。
//
// 这是一个单例。
var Verdict = verdict{}

type verdict struct{}

var _ webhookauth.LogSetup = (*verdict)(nil)

func (verdict) Setup(state *webhookauth.ValidationState) {
	if !state.Valid {
		state.LogLevel = logx.LevelWarn
	}

	state.LogMessage = append(state.LogMessage,
		"Valid", state.Valid,
		"Gate", string(state.Gate),
	)
}

// Error 根据当前的错误信息，判断错误的级别，并输出错误的描述信息。
//
// 输出字段为： ErrorType/Error 。
//
// 这是一个单例。
var Error = err{}

type err struct{}

var _ webhookauth.LogSetup = (*err)(nil)

func (err) Setup(state *webhookauth.ValidationState) {
	if state.Error == nil {
		return
	}

	logLevel, errTypeName, errDescription := webhookauth.DescribeError(state.Error)

	state.LogLevel = logLevel
	state.LogMessage = append(state.LogMessage,
		"ErrorType", errTypeName,
		"Error", errDescription,
	)
}
