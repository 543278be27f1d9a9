package middleware

import (
	"net/http"
	"strings"
)

// StripEmptyQueryParams drops blank query values so an empty filter means no filter.
func StripEmptyQueryParams() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery == "" {
				next.ServeHTTP(w, r)
				return
			}
			q := r.URL.Query()
			for name, values := range q {
				kept := values[:0]
				for _, v := range values {
					if v = strings.TrimSpace(v); v != "" {
						kept = append(kept, v)
					}
				}
				if len(kept) == 0 {
					q.Del(name)
				} else {
					q[name] = kept
				}
			}
			r.URL.RawQuery = q.Encode()
			next.ServeHTTP(w, r)
		})
	}
}
