package webhookauth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Middleware 返回一个 net/http 中间件，校验通过后才执行后续的 [http.Handler] 。
//   - 签名不匹配时，返回 403 Forbidden 。
//   - 未能完成校验（见 [RequestError] ）时，返回 400 Bad Request 。
//
// 可直接用于 go-chi 等兼容 net/http 的路由，如 router.Use(webhookauth.Middleware(v)) 。
func Middleware(v *Validator) func(http.Handler) http.Handler {
	if v == nil {
		panic("validator must be provided")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := v.Validate(r.Context(), r)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}

			if !ok {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// EchoMiddleware 返回用于 echo 的中间件，行为同 [Middleware] 。
// 未能完成校验时返回 [echo.HTTPError] ，原始错误记录在其 Internal 字段上，由 echo 的错误处理过程输出。
func EchoMiddleware(v *Validator) echo.MiddlewareFunc {
	if v == nil {
		panic("validator must be provided")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			ok, err := v.Validate(r.Context(), r)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
			}

			if !ok {
				return c.NoContent(http.StatusForbidden)
			}

			return next(c)
		}
	}
}
