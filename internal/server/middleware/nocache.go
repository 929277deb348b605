package middleware

import "net/http"

// NoCache запрещает кэширование всех ответов.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Expires", "0")
		h.Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

// BodyLimit ограничивает размер тела запроса; при превышении ParseForm вернёт ошибку.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
