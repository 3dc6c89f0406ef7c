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

	// ConsistencyOps 记录级联/扇出操作的结果
	ConsistencyOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_consistency_operations_total",
			Help: "Consistency operations by name and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// HookFailures 提交后副作用（邮件等）失败次数，失败不会回滚主操作
	HookFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_post_commit_hook_failures_total",
			Help: "Failed post-commit side effects",
		},
		[]string{"hook"},
	)

	// FanoutFailures 扇出写入中单个学员失败的次数
	FanoutFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_fanout_item_failures_total",
			Help: "Per-learner failures inside a fan-out write",
		},
		[]string{"fanout"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ConsistencyOps)
		prometheus.MustRegister(HookFailures)
		prometheus.MustRegister(FanoutFailures)
	})
}

// ObserveOperation 记录一次一致性操作的结果
func ObserveOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ConsistencyOps.WithLabelValues(operation, outcome).Inc()
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
