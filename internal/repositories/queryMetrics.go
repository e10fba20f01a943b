package repositories

import (
	"time"

	"codequest/internal/metrics"
)

// trackQuery starts timing a query; the returned func records duration and error status.
//
//	done := trackQuery("create", "user")
//	defer func() { done(err) }()
func trackQuery(queryType, repository string) func(err error) {
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
			metrics.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		}
		metrics.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(time.Since(start).Seconds())
	}
}
