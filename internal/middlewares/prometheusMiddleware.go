package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"codequest/internal/metrics"
)

// Instrument records request count, latency and response size per route template.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.InFlightRequests.Inc()
		defer metrics.InFlightRequests.Dec()

		rw := newResponseRecorder(w)
		next.ServeHTTP(rw, r)

		statusCode := strconv.Itoa(rw.status())
		path := routeTemplate(r)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, statusCode).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(r.Method, path, statusCode).Observe(time.Since(start).Seconds())
		metrics.HTTPResponseSizeBytes.WithLabelValues(r.Method, path, statusCode).Observe(float64(rw.size))
	})
}

// routeTemplate keeps label cardinality bounded by using "/api/v1/auth/{provider}"
// instead of the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// responseRecorder captures the status code and response size.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w}
}

func (rw *responseRecorder) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(data []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(data)
	rw.size += n
	return n, err
}

func (rw *responseRecorder) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}
