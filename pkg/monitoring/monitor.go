package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ReviewGenerations 复习卷生成次数，outcome 为 success 或错误类别
	ReviewGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_test_generations_total",
			Help: "Review test generations by outcome",
		},
		[]string{"outcome"},
	)

	ReviewFallbackDuplication = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_test_fallback_duplication_total",
			Help: "Generations that padded a subject with synthetic duplicates",
		},
		[]string{"subject"},
	)

	ReviewGenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_test_generation_duration_seconds",
			Help:    "Duration of review test generation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ReviewGenerations)
		prometheus.MustRegister(ReviewFallbackDuplication)
		prometheus.MustRegister(ReviewGenerationDuration)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
