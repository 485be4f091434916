// Package metrics объявляет метрики Prometheus сервиса.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodgram_http_requests_in_flight",
		Help: "HTTP requests being served.",
	})

	relationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_relation_toggles_total",
		Help: "Favorite, shopping cart and subscription toggles by outcome.",
	}, []string{"kind", "op", "result"})

	shoppingDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Generated shopping list documents.",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_cache_lookups_total",
		Help: "Catalog cache lookups by result.",
	}, []string{"result"})
)

// RecordHTTPRequest учитывает завершённый HTTP-запрос.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackInFlight увеличивает или уменьшает число обслуживаемых запросов.
func TrackInFlight(start bool) {
	if start {
		httpInFlight.Inc()
		return
	}
	httpInFlight.Dec()
}

// RecordToggle учитывает добавление или удаление связи.
func RecordToggle(kind, op, result string) {
	relationToggles.WithLabelValues(kind, op, result).Inc()
}

// RecordShoppingDownload учитывает выгрузку списка покупок.
func RecordShoppingDownload() {
	shoppingDownloads.Inc()
}

// RecordCacheLookup учитывает попадание (hit) или промах (miss) кеша.
func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}
