// Package webhooktest 提供用于测试 webhookauth 包的辅助方法。
package webhooktest

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"

	"github.com/cmstar/go-webhookauth"
)

// RequestSetup 用于设置用于测试的 HTTP 请求。
type RequestSetup struct {
	HttpMethod string            // HTTP 请求的方法。若未给定值，有 Form 或 BodyString 时为 POST ，否则为 GET 。
	Form       url.Values        // 表单参数，编码为 body ，并设置 Content-Type 为 [webhookauth.ContentTypeForm] 。
	BodyString string            // 指定请求的 body ，优先级高于 Form 。不会自动设置 Content-Type 。
	Header     map[string]string // 附加的 HTTP 头。
	RemoteAddr string            // 客户端地址，如 203.0.113.7:5000 。为空时沿用 httptest 的默认值 192.0.2.1:1234 。
	LocalAddr  net.Addr          // 服务端接收请求的本地地址。为 nil 时不设置。
	TLS        bool              // 是否模拟 HTTPS 连接。 target 以 https:// 开头时总是模拟 HTTPS 连接。
}

// NewRequest 基于 httptest 包创建用于测试的 HTTP 请求。
// target 可以是完整的 URL ，此时其 host 部分被用作 [http.Request.Host] 。
func NewRequest(target string, setup RequestSetup) *http.Request {
	var body io.Reader
	if setup.BodyString != "" {
		body = strings.NewReader(setup.BodyString)
	} else if setup.Form != nil {
		body = strings.NewReader(setup.Form.Encode())
	}

	method := setup.HttpMethod
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	req := httptest.NewRequest(method, target, body)

	// httptest 总是给出完整的 URL ，服务端收到的请求只有路径部分。
	req.URL.Scheme = ""
	req.URL.Host = ""
	req.RequestURI = req.URL.RequestURI()

	if setup.BodyString == "" && setup.Form != nil {
		req.Header.Set(webhookauth.HttpHeaderContentType, webhookauth.ContentTypeForm)
	}

	for k, v := range setup.Header {
		req.Header.Set(k, v)
	}

	if setup.RemoteAddr != "" {
		req.RemoteAddr = setup.RemoteAddr
	}

	if setup.LocalAddr != nil {
		ctx := context.WithValue(req.Context(), http.LocalAddrContextKey, setup.LocalAddr)
		req = req.WithContext(ctx)
	}

	if setup.TLS && req.TLS == nil {
		req.TLS = &tls.ConnectionState{}
	}

	return req
}

// TCPAddr 解析形如 127.0.0.1:80 的地址，解析失败时 panic 。
func TCPAddr(addr string) *net.TCPAddr {
	v, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		panic(err)
	}
	return v
}

// Sign 使用给定的配置为请求签名，签名写入签名头。签名失败时 panic 。
func Sign(r *http.Request, config webhookauth.Config) *http.Request {
	if _, err := webhookauth.SignRequest(r, config); err != nil {
		panic(err)
	}
	return r
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
