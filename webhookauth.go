/*
webhookauth 包用于校验 Webhook 请求的签名，确认请求来自持有共享密钥（ auth token ）的一方，且在传输过程中未被篡改。

签名规则与 Twilio 的 Request Validation 一致。

# 签名算法

 1. 取请求的完整 URL ，从协议（ http... ）开始，直到 query string 结束（包含“?”）。
    HTTPS 请求的主机名不带端口，其他请求带端口。若配置了 [Config.BaseURLOverride] ，则使用
    BaseURLOverride + PATH + QUERY 代替。路径和 query string 均使用收到的原文，不做任何转义处理。
 2. 若是 application/x-www-form-urlencoded 请求，将表单参数按名称的字节顺序升序排列，
    依次将“名称+值”紧密拼接在 URL 后面（无分隔符，不转义）。同名参数只取最后一个值。
 3. 以 auth token 为密钥，计算 HMAC-SHA1 。
 4. 将结果使用标准 Base64 编码，与 X-Twilio-Signature 头的值比较。比较使用固定耗时的方式进行。

# 例子

密钥为 abc123 ，请求为：

	POST https://example.com/sms
	Content-Type: application/x-www-form-urlencoded

	From=%2B15551234567&Body=Hi

待签名串为：

	https://example.com/smsBodyHiFrom+15551234567

# 本机请求

开启 [Config.AllowLocal] 后，来自本机的请求将跳过签名校验，仅用于开发环境。
带有 X-Forwarded-For 头的请求总是被视为经过了代理，不会被当作本机请求。
*/
package webhookauth

const (
	// HttpHeaderSignature 是默认的签名头。
	HttpHeaderSignature = "X-Twilio-Signature"

	// HttpHeaderForwardedFor 对应 HTTP 头中的 X-Forwarded-For 字段。
	HttpHeaderForwardedFor = "X-Forwarded-For"

	// HttpHeaderContentType 对应 HTTP 头中的 Content-Type 字段。
	HttpHeaderContentType = "Content-Type"

	// ContentTypeForm 对应 Content-Type: application/x-www-form-urlencoded 的值。
	ContentTypeForm = "application/x-www-form-urlencoded"

	// DefaultMaxBodySize 是读取请求 body 时允许的最大字节数，在 [Config.MaxBodySize] 未指定时使用。
	DefaultMaxBodySize = 10 * 1024 * 1024

	// LoggerName 是通过 [logx.LogFinder] 获取 Logger 时使用的名称。
	LoggerName = "webhookauth"
)
