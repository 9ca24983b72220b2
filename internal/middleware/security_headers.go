package middleware

import "net/http"

// bridgeHeaders はローカルブリッジの全レスポンスに付与するヘッダー。
// 応答はJSONとWebSocketだけなので、ブラウザに何も描画・埋め込みさせない。
// サインイン中ユーザーやタスクを含むためキャッシュもさせない。
var bridgeHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cache-Control", "no-store"},
	{"Referrer-Policy", "no-referrer"},
}

// NewSecurityHeadersMiddleware はbridgeHeadersを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, kv := range bridgeHeaders {
				w.Header().Set(kv[0], kv[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}
