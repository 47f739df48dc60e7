package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP はリクエスト数と処理時間をルートごとに数える。
type HTTP struct {
	service  string
	gatherer prometheus.Gatherer
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTP(reg *prometheus.Registry, service string) *HTTP {
	m := &HTTP{
		service:  service,
		gatherer: reg,
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
			[]string{"service", "method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration", Buckets: prometheus.DefBuckets},
			[]string{"service", "method", "route"},
		),
	}
	reg.MustRegister(m.total, m.duration)
	return m
}

func (m *HTTP) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := routePattern(c)
			m.total.WithLabelValues(m.service, c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(m.service, c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler は /metrics 用
func (m *HTTP) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// 登録済みルートのパターン。無ければ実パス
func routePattern(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}
