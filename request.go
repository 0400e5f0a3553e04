package webhookauth

import (
	"context"
	"net/http"
)

// Request 记录一次校验所需的全部输入。在一次校验过程中不会被修改。
type Request struct {
	Scheme string // Scheme 是请求的协议， http 或 https 。
	Host   string // Host 是请求的主机名，可带端口。
	Path   string // Path 是请求路径的原文。
	Query  string // Query 是 query string 的原文，带有开头的“?”；没有 query string 时为空字符串。
	Method string // Method 是 HTTP 请求的方法。

	// Params 是表单参数，同名参数只保留最后一个值。仅在 application/x-www-form-urlencoded 请求时不为 nil 。
	Params map[string]string

	// Signature 是请求携带的签名，没有签名头时为空字符串。
	Signature string

	// Header 是请求的 HTTP 头，仅用于判断请求是否经过代理。
	Header http.Header

	// Conn 是请求的连接信息，仅用于判断是否本机请求。
	Conn ConnectionInfo
}

// DescribeRequest 从 [http.Request] 构建 [Request] 。
// 对于表单请求，会通过 [CollectParams] 读取 body ，此过程中的错误原样返回；其余部分不会出错。
// config 应已经过 [Config.Check] 。
//
// 协议优先使用 URL 上给定的值（如客户端构建的请求）；没有时，带有 TLS 连接的是 https ，否则是 http 。
// 不会读取 X-Forwarded-Proto 等可被伪造的头，服务部署在代理后面时应使用 [Config.BaseURLOverride] 。
func DescribeRequest(ctx context.Context, r *http.Request, config Config) (Request, error) {
	params, err := CollectParams(ctx, r, config.MaxBodySize)
	if err != nil {
		return Request{}, err
	}

	header := config.SignatureHeader
	if header == "" {
		header = HttpHeaderSignature
	}

	return Request{
		Scheme:    schemeOf(r),
		Host:      hostOf(r),
		Path:      r.URL.EscapedPath(),
		Query:     queryOf(r),
		Method:    r.Method,
		Params:    params,
		Signature: r.Header.Get(header),
		Header:    r.Header,
		Conn:      ConnectionInfoOf(r),
	}, nil
}

func schemeOf(r *http.Request) string {
	if r.URL.Scheme != "" {
		return r.URL.Scheme
	}

	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func hostOf(r *http.Request) string {
	if r.Host != "" {
		return r.Host
	}
	return r.URL.Host
}

func queryOf(r *http.Request) string {
	if r.URL.RawQuery == "" && !r.URL.ForceQuery {
		return ""
	}
	return "?" + r.URL.RawQuery
}
