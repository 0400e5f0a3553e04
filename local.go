package webhookauth

import (
	"net"
	"net/http"
	"strings"
)

// ConnectionInfo 记录请求的连接两端的 IP 地址。未知的地址为 nil 。
type ConnectionInfo struct {
	RemoteIP net.IP // RemoteIP 是客户端的地址。
	LocalIP  net.IP // LocalIP 是服务端接收请求的地址。
}

// ConnectionInfoOf 从请求中获取连接信息。
// 客户端地址来自 [http.Request.RemoteAddr] ；服务端地址来自 [http.LocalAddrContextKey] ，
// 由 [http.Server] 在接收请求时设置。无法解析的地址记为 nil 。
func ConnectionInfoOf(r *http.Request) ConnectionInfo {
	info := ConnectionInfo{
		RemoteIP: ParseHostIP(r.RemoteAddr),
	}

	switch addr := r.Context().Value(http.LocalAddrContextKey).(type) {
	case *net.TCPAddr:
		if addr != nil {
			info.LocalIP = addr.IP
		}
	case net.Addr:
		if addr != nil {
			info.LocalIP = ParseHostIP(addr.String())
		}
	}

	return info
}

// ParseHostIP 从“IP”、“IP:PORT”、“[IPv6]”、“[IPv6]:PORT”格式的地址中解析出 IP 。无法解析时返回 nil 。
func ParseHostIP(addr string) net.IP {
	if addr == "" {
		return nil
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	// 还可能有“[]”包裹，也去掉。
	if len(host) > 2 && host[0] == '[' && host[len(host)-1] == ']' {
		host = host[1 : len(host)-1]
	}

	// 带 zone 的 IPv6 地址，如 fe80::1%eth0 。
	if idx := strings.IndexByte(host, '%'); idx > 0 {
		host = host[:idx]
	}

	return net.ParseIP(host)
}

// IsLocal 判断请求是否来自本机。
//   - 若请求带有 X-Forwarded-For 头（名称不区分大小写），则请求经过了代理，不是本机请求。该头可被伪造，不能作为信任的依据。
//   - 若两端地址都已知，则两者相同，或客户端地址是回环地址时，是本机请求。
//   - 若只知道客户端地址，则其为回环地址时，是本机请求。
//   - 若两端地址都未知（如进程内的测试，没有真实的连接），视为本机请求。
//   - 其余情况不是本机请求。
func IsLocal(header http.Header, conn ConnectionInfo) bool {
	if hasHeader(header, HttpHeaderForwardedFor) {
		return false
	}

	remote, local := conn.RemoteIP, conn.LocalIP
	switch {
	case remote != nil && local != nil:
		return remote.Equal(local) || remote.IsLoopback()

	case remote != nil:
		return remote.IsLoopback()

	case local == nil:
		return true
	}

	return false
}

// hasHeader 判断 header 中是否有给定名称的字段。 header 可能是手工构建的，其 key 不一定是规范格式，逐个比较。
func hasHeader(header http.Header, name string) bool {
	for k := range header {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
