package webhookauth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/sms", strings.NewReader(body))
	r.Header.Set(HttpHeaderContentType, ContentTypeForm)
	return r
}

func TestIsFormRequest(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"", false},
		{"application/x-www-form-urlencoded", true},
		{"application/x-www-form-urlencoded; charset=utf-8", true},
		{"Application/X-WWW-Form-Urlencoded", true},
		{"multipart/form-data; boundary=x", false},
		{"application/json", false},
		{";;", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.contentType != "" {
				r.Header.Set(HttpHeaderContentType, tt.contentType)
			}
			assert.Equal(t, tt.want, IsFormRequest(r))
		})
	}
}

func TestCollectParams(t *testing.T) {
	ctx := context.Background()

	t.Run("not-form", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		r.Header.Set(HttpHeaderContentType, "application/json")

		params, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		assert.Nil(t, params)

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"a":1}`, string(body))
	})

	t.Run("form", func(t *testing.T) {
		r := newFormRequest("From=%2B15551234567&Body=Hi+there&Empty=")

		params, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"From":  "+15551234567",
			"Body":  "Hi there",
			"Empty": "",
		}, params)
	})

	t.Run("last-value-wins", func(t *testing.T) {
		params, err := CollectParams(ctx, newFormRequest("a=1&a=2&a=3"), 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "3"}, params)
	})

	t.Run("empty-body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set(HttpHeaderContentType, ContentTypeForm)

		params, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		assert.Empty(t, params)
	})

	t.Run("re-read", func(t *testing.T) {
		r := newFormRequest("a=1&b=2")

		first, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)

		// 第二次读取使用缓存， body 仍可被后续处理过程读取。
		second, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "a=1&b=2", string(body))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2", r.PostFormValue("b"))
	})

	t.Run("parsed-form", func(t *testing.T) {
		r := newFormRequest("a=1")
		require.NoError(t, r.ParseForm())

		_, err := CollectParams(ctx, r, 0)
		require.Error(t, err)
		assert.IsType(t, RequestError{}, err)
		assert.Equal(t, "body already consumed", err.Error())
	})

	t.Run("parsed-invalid-form", func(t *testing.T) {
		r := newFormRequest("a=1&b=%zz")
		require.Error(t, r.ParseForm())
		require.Equal(t, "1", r.PostForm.Get("a"))

		_, err := CollectParams(ctx, r, 0)
		require.Error(t, err)
		assert.IsType(t, RequestError{}, err)
	})

	t.Run("preset-post-form-ignored", func(t *testing.T) {
		r := newFormRequest("a=1")
		r.PostForm = url.Values{"a": {"forged"}, "x": {"y"}}

		params, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "1"}, params)
	})

	t.Run("preset-post-form-oversize", func(t *testing.T) {
		r := newFormRequest("a=12345")
		r.PostForm = url.Values{"a": {"1"}}

		_, err := CollectParams(ctx, r, 4)
		assert.IsType(t, RequestError{}, err)
	})

	t.Run("replaced-body", func(t *testing.T) {
		r := newFormRequest("a=1")
		_, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)

		r.Body = io.NopCloser(strings.NewReader("a=2"))
		params, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "2"}, params)
	})

	t.Run("cached-copy", func(t *testing.T) {
		r := newFormRequest("a=1")
		first, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		first["a"] = "changed"

		second, err := CollectParams(ctx, r, 0)
		require.NoError(t, err)
		assert.Equal(t, "1", second["a"])
	})

	t.Run("oversize", func(t *testing.T) {
		_, err := CollectParams(ctx, newFormRequest("a=12345"), 4)
		require.Error(t, err)

		var requestErr RequestError
		assert.True(t, errors.As(err, &requestErr))
		assert.Equal(t, "body exceeds 4 bytes", err.Error())
	})

	t.Run("exact-size", func(t *testing.T) {
		params, err := CollectParams(ctx, newFormRequest("a=12"), 4)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "12"}, params)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := CollectParams(cctx, newFormRequest("a=1"), 0)
		require.Error(t, err)

		var requestErr RequestError
		assert.True(t, errors.As(err, &requestErr))
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("io-error", func(t *testing.T) {
		r := newFormRequest("")
		r.Body = io.NopCloser(io.MultiReader(strings.NewReader("a=1"), errReader{}))

		_, err := CollectParams(ctx, r, 0)
		require.Error(t, err)
		assert.Regexp(t, `^read body:: broken$`, err.Error())
	})

	t.Run("invalid-form", func(t *testing.T) {
		_, err := CollectParams(ctx, newFormRequest("a=%zz"), 0)
		require.Error(t, err)

		var requestErr RequestError
		assert.True(t, errors.As(err, &requestErr))
		assert.Regexp(t, `^invalid form data:: `, err.Error())
	})
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errors.New("broken")
}
