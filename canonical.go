package webhookauth

import (
	"net"
	"strings"
)

// CanonicalURL 返回签名方计算签名时使用的完整 URL 。
//   - 若 override 不为空，结果为 override + path + query ， override 末尾不应带“/”。
//   - 否则结果为 scheme://host + path + query ，其中 scheme 为 https 时， host 不带端口；其他情况保留端口。
//
// query 需带有开头的“?”，没有 query string 时为空字符串。
// path 和 query 原样拼接，不做任何转义或规范化。
func CanonicalURL(scheme, host, path, query, override string) string {
	b := new(strings.Builder)

	if override != "" {
		b.WriteString(override)
	} else {
		b.WriteString(scheme)
		b.WriteString("://")
		b.WriteString(canonicalHost(scheme, host))
	}

	b.WriteString(path)
	b.WriteString(query)
	return b.String()
}

// 签名方看到的是反向代理对外的地址， HTTPS 请求的主机名不带端口。
func canonicalHost(scheme, host string) string {
	if !strings.EqualFold(scheme, "https") {
		return host
	}

	h, _, err := net.SplitHostPort(host)
	if err != nil {
		// 没有端口。
		return host
	}

	// IPv6 地址需保留方括号。
	if strings.Contains(h, ":") {
		return "[" + h + "]"
	}
	return h
}
