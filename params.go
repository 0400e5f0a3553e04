package webhookauth

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// IsFormRequest 判断请求是否为 application/x-www-form-urlencoded 类型。
func IsFormRequest(r *http.Request) bool {
	contentType := r.Header.Get(HttpHeaderContentType)
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == ContentTypeForm
}

// CollectParams 读取表单请求的 body ，返回参数名称到值的映射。同名参数只保留最后一个值。
//
// 非表单请求返回 nil 。
// body 只会从网络读取一次：读取后 [http.Request.Body] 被替换为新的、未被读取的 body ，
// 其中记录了读取到的数据和解析结果，后续的处理过程可以再次读取到相同的数据，再次调用此方法时直接返回记录的结果。
// 解析结果也会赋值到 [http.Request.PostForm] ，但此方法自身从不读取 PostForm 。
//
// 读取过程中若 ctx 被取消、发生 I/O 错误、 body 超过 maxBodySize 或表单格式错误，返回 [RequestError] 。
// 若 body 在此之前已被其他过程读取（如调用过 [http.Request.ParseForm] ），无法得到原始数据，也返回 [RequestError] 。
func CollectParams(ctx context.Context, r *http.Request, maxBodySize int64) (map[string]string, error) {
	if !IsFormRequest(r) {
		return nil, nil
	}

	if cached, ok := r.Body.(*cachedBody); ok {
		return copyParams(cached.params), nil
	}

	body, err := repeatableReadBody(ctx, r, maxBodySize)
	if err != nil {
		return nil, err
	}

	// 声明了长度或已有解析结果，却读不到数据，说明 body 已被消费。
	if len(body) == 0 && (r.ContentLength > 0 || len(r.PostForm) > 0) {
		return nil, CreateRequestError(nil, "body already consumed")
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, CreateRequestError(err, "invalid form data")
	}

	params := lastValues(values)
	if cached, ok := r.Body.(*cachedBody); ok {
		cached.params = params
	}

	r.PostForm = values
	return copyParams(params), nil
}

func lastValues(values url.Values) map[string]string {
	m := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			m[k] = v[len(v)-1]
		} else {
			m[k] = ""
		}
	}
	return m
}

// 读取整个 [http.Request.Body] 并返回读取到数据。
// 读取完毕后，原 body 会被关闭， Body 字段被替换为新的、未被读取的 [cachedBody] ，其包含读取到数据。
func repeatableReadBody(ctx context.Context, r *http.Request, maxBodySize int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	reader := io.LimitReader(contextReader{ctx, r.Body}, maxBodySize+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, CreateRequestError(err, "read body")
	}

	if int64(len(data)) > maxBodySize {
		return nil, CreateRequestError(nil, "body exceeds %d bytes", maxBodySize)
	}

	// 读取完成后再检查一次，确保取消不会被当作正常结束。
	if err := ctx.Err(); err != nil {
		return nil, CreateRequestError(err, "read body")
	}

	if err := r.Body.Close(); err != nil {
		return nil, CreateRequestError(err, "close body")
	}

	r.Body = &cachedBody{Reader: bytes.NewReader(data)}
	return data, nil
}

// cachedBody 是 [CollectParams] 读取后替换到 [http.Request.Body] 上的 body 。
type cachedBody struct {
	*bytes.Reader
	params map[string]string
}

// Close implements [io.Closer].
func (*cachedBody) Close() error {
	return nil
}

func copyParams(params map[string]string) map[string]string {
	m := make(map[string]string, len(params))
	for k, v := range params {
		m[k] = v
	}
	return m
}

// contextReader 在每次读取前检查 ctx 是否已被取消。
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (x contextReader) Read(p []byte) (int, error) {
	if err := x.ctx.Err(); err != nil {
		return 0, err
	}
	return x.r.Read(p)
}
