package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ReportBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rating_report_build_seconds",
		Help:    "Время построения отчёта по оценкам",
		Buckets: prometheus.DefBuckets,
	})
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_reports_total",
		Help: "Количество запросов на отчёт по исходу",
	}, []string{"outcome"})

	HistoryPagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_pages_fetched_total",
		Help: "Количество загруженных страниц истории",
	})
	HistoryMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_messages_fetched_total",
		Help: "Количество загруженных сообщений истории",
	})

	CacheCorruptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rating_cache_corrupt_total",
		Help: "Сколько раз кэш канала оказался повреждён и был пересобран",
	})

	CommandErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_command_errors_total",
		Help: "Ошибки ответа на команды бота",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ReportBuildSeconds,
		ReportsTotal,
		HistoryPagesTotal,
		HistoryMessagesTotal,
		CacheCorruptTotal,
		CommandErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string, handler http.Handler) {
	if handler == nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		handler = mux
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveReport фиксирует исход и длительность построения отчёта.
func ObserveReport(outcome string, start time.Time) {
	if outcome == "" {
		outcome = "unknown"
	}
	ReportsTotal.WithLabelValues(outcome).Inc()
	ReportBuildSeconds.Observe(time.Since(start).Seconds())
}

// IncHistoryPages учитывает одну загруженную страницу истории.
func IncHistoryPages(messages int) {
	HistoryPagesTotal.Inc()
	if messages > 0 {
		HistoryMessagesTotal.Add(float64(messages))
	}
}

// IncCacheCorrupt учитывает пересборку повреждённого кэша.
func IncCacheCorrupt() {
	CacheCorruptTotal.Inc()
}

// IncCommandErrors учитывает ошибку ответа на команду.
func IncCommandErrors() {
	CommandErrors.Inc()
}
