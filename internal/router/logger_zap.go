package router

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// CustomZapLogger is a middleware that logs the end of each request, along
// with some useful data about what was requested, what the response status
// was, and how long it took to return
func CustomZapLogger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		t1 := time.Now()
		defer func() {
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("host", r.Host),
				zap.String("path", r.RequestURI),
				zap.String("remoteaddr", r.RemoteAddr),
				zap.Duration("lat", time.Since(t1)),
				zap.Int("http_status", ww.Status()),
				zap.Int("size", ww.BytesWritten()),
			}
			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				fields = append(fields, zap.String("requestid", reqID))
			}
			zap.L().Info("request served", fields...)
		}()

		next.ServeHTTP(ww, r)
	}
	return http.HandlerFunc(fn)
}
