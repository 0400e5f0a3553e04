package webhookauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"sort"
	"strings"
)

/* 当前文件提供签名算法的实现。 */

// HmacSha1Base64 计算 HMAC-SHA1 ，返回标准 Base64 编码的结果。
func HmacSha1Base64(secret, data []byte) string {
	h := hmac.New(sha1.New, secret)
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// BuildDataToSign 返回待签名串：在 canonicalURL 后面按参数名称的字节顺序依次拼接“名称+值”，无分隔符，不转义。
// params 为空时，待签名串即 canonicalURL 。
func BuildDataToSign(canonicalURL string, params map[string]string) string {
	if len(params) == 0 {
		return canonicalURL
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}

	// Go 的字符串比较即字节顺序。注意字节顺序下，英文大写字母排在小写字母前面。
	sort.Strings(keys)

	b := new(strings.Builder)
	b.WriteString(canonicalURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	return b.String()
}

// ComputeSignature 计算给定 URL 和参数的签名。
//   - secret 是共享密钥，即 auth token 。
//   - canonicalURL 由 [CanonicalURL] 得到。
//   - params 是表单参数，非表单请求时为 nil 。
func ComputeSignature(secret, canonicalURL string, params map[string]string) string {
	data := BuildDataToSign(canonicalURL, params)
	return HmacSha1Base64([]byte(secret), []byte(data))
}

// CompareSignature 以固定耗时的方式比较两个签名。 presented 为空时直接返回 false 。
func CompareSignature(expected, presented string) bool {
	if presented == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(presented))
}

// SignRequest 计算请求的签名，并将其赋值到 [Config.SignatureHeader] 指定的头。
// 用于发送方或测试用例，返回计算得到的签名。
//
// 对于表单请求，调用此方法后， [http.Request.Body] 会被读取并重新置换为可重读的数据，请求仍可被发送。
// 之后若替换了 body ，再次签名时会重新读取新的 body 。
// 连接信息不参与签名，构建 URL 的规则和接收方一致。
func SignRequest(r *http.Request, config Config) (string, error) {
	config, err := config.Check()
	if err != nil {
		return "", err
	}

	req, err := DescribeRequest(r.Context(), r, config)
	if err != nil {
		return "", err
	}

	url := CanonicalURL(req.Scheme, req.Host, req.Path, req.Query, config.BaseURLOverride)
	sign := ComputeSignature(config.AuthToken, url, req.Params)
	r.Header.Set(config.SignatureHeader, sign)
	return sign, nil
}
