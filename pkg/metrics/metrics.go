// Package metrics 提供净额结算的 Prometheus 指标与采集接口
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/netsettlement/pkg/logger"
)

// Namespace 所有指标的命名空间
const Namespace = "netting"

// 周期结果标签
const (
	OutcomeSettled = "settled"
	OutcomeFailed  = "failed"
)

// Metrics 指标集合
type Metrics struct {
	// 结算周期计数，按 outcome 区分
	CyclesTotal *prometheus.CounterVec
	// 结算周期耗时
	CycleDuration prometheus.Histogram
	// 生成的结算指令数
	SettlementsTotal prometheus.Counter
	// 被拒绝的债务记录数
	RejectedTotal prometheus.Counter
	// 最近一个周期的压缩率（0..1）
	CompressionRatio prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	subsystem := sanitize(serviceName)
	return &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "cycles_total",
			Help:      "Total netting cycles by outcome",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "cycle_duration_seconds",
			Help:      "Netting cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SettlementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "settlements_total",
			Help:      "Total settlement instructions produced",
		}),
		RejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "rejected_obligations_total",
			Help:      "Total obligation records rejected by the ledger",
		}),
		CompressionRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "compression_ratio",
			Help:      "Share of gross volume removed by netting in the last cycle",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		m.CyclesTotal,
		m.CycleDuration,
		m.SettlementsTotal,
		m.RejectedTotal,
		m.CompressionRatio,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}
	logger.Debug(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器，返回的 server 由调用方负责关闭
func StartHTTPServer(port int, path string, gatherer prometheus.Gatherer) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "Prometheus HTTP server stopped", "error", err)
		}
	}()
	return srv
}

// ServeUntilDone 阻塞到 ctx 结束后关闭 server，供一次性命令保留 /metrics 端点
func ServeUntilDone(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Collector 指标收集器接口
type Collector interface {
	// 记录一个结算周期
	RecordCycle(outcome string, duration time.Duration, settlements int)
	// 记录被拒绝的债务
	RecordRejected(n int)
	// 更新压缩率，defined 为 false 时不更新
	ObserveCompression(ratio float64, defined bool)
}

// PrometheusCollector 基于 Metrics 的收集器实现
type PrometheusCollector struct {
	metrics *Metrics
}

// NewPrometheusCollector 创建收集器
func NewPrometheusCollector(m *Metrics) *PrometheusCollector {
	return &PrometheusCollector{metrics: m}
}

// RecordCycle 记录一个结算周期
func (pc *PrometheusCollector) RecordCycle(outcome string, duration time.Duration, settlements int) {
	pc.metrics.CyclesTotal.WithLabelValues(outcome).Inc()
	pc.metrics.CycleDuration.Observe(duration.Seconds())
	if settlements > 0 {
		pc.metrics.SettlementsTotal.Add(float64(settlements))
	}
}

// RecordRejected 记录被拒绝的债务
func (pc *PrometheusCollector) RecordRejected(n int) {
	if n > 0 {
		pc.metrics.RejectedTotal.Add(float64(n))
	}
}

// ObserveCompression 更新压缩率
func (pc *PrometheusCollector) ObserveCompression(ratio float64, defined bool) {
	if defined {
		pc.metrics.CompressionRatio.Set(ratio)
	}
}

// NopCollector 不做任何记录
type NopCollector struct{}

func (NopCollector) RecordCycle(string, time.Duration, int) {}
func (NopCollector) RecordRejected(int)                     {}
func (NopCollector) ObserveCompression(float64, bool)       {}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
