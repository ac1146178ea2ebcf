package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	LLMCompletionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_completions_total",
		Help: "Chat completion calls by result status (ok, empty, failed)",
	}, []string{"status"})
	VoiceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_requests_total",
		Help: "ASR/TTS/upload calls by kind and result",
	}, []string{"kind", "result"})
)

func init() {
	prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration, LLMCompletionsTotal, VoiceRequestsTotal)
}

// ObserveCompletion 记录一次大模型调用结果
func ObserveCompletion(status string) {
	LLMCompletionsTotal.WithLabelValues(status).Inc()
}

// ObserveVoice 记录一次语音相关调用，kind: upload | asr | tts
func ObserveVoice(kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	VoiceRequestsTotal.WithLabelValues(kind, result).Inc()
}

// GinMiddleware 统计基础请求指标，供 Prometheus 拉取。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
