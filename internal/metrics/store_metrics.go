package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de una reserva de stock en el carrito.
const (
	ReservationOK           = "ok"
	ReservationInsufficient = "insufficient_stock"
)

// StoreMetrics métricas de negocio y HTTP de la tienda.
// Todos los métodos aceptan receptor nil para que los casos de uso funcionen sin métricas.
type StoreMetrics struct {
	productsSaved    prometheus.Counter
	priceChanges     prometheus.Counter
	stockUnitsAdded  prometheus.Counter
	cartReservations *prometheus.CounterVec
	ordersPlaced     prometheus.Counter
	unitsSold        prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	checkoutDuration prometheus.Histogram
}

// NewStoreMetrics registra las métricas en el registerer por defecto.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWithRegisterer registra las métricas en el registerer indicado (tests usan uno propio).
func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		productsSaved: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crochet_products_saved_total",
			Help: "Productos creados en el catálogo",
		})),
		priceChanges: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crochet_price_changes_total",
			Help: "Entradas agregadas al libro de precios",
		})),
		stockUnitsAdded: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crochet_stock_units_added_total",
			Help: "Unidades de inventario creadas",
		})),
		cartReservations: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crochet_cart_reservations_total",
			Help: "Verificaciones de stock al modificar el carrito",
		}, []string{"result"})),
		ordersPlaced: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crochet_orders_placed_total",
			Help: "Órdenes creadas en el checkout",
		})),
		unitsSold: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crochet_units_sold_total",
			Help: "Unidades de inventario marcadas como vendidas",
		})),
		cacheLookups: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crochet_product_cache_lookups_total",
			Help: "Lecturas del cache de productos",
		}, []string{"result"})),
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crochet_http_requests_total",
			Help: "Peticiones HTTP atendidas",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crochet_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})),
		checkoutDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crochet_checkout_duration_seconds",
			Help:    "Duración de la transacción de checkout",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		})),
	}
}

// register registra el collector; si ya existía uno con el mismo nombre lo reutiliza.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

func (m *StoreMetrics) RecordProductsSaved(n int) {
	if m == nil {
		return
	}
	m.productsSaved.Add(float64(n))
}

func (m *StoreMetrics) RecordPriceChange() {
	if m == nil {
		return
	}
	m.priceChanges.Inc()
}

func (m *StoreMetrics) RecordStockUnitsAdded(n int) {
	if m == nil {
		return
	}
	m.stockUnitsAdded.Add(float64(n))
}

// RecordReservation cuenta una verificación de stock con su resultado.
func (m *StoreMetrics) RecordReservation(result string) {
	if m == nil {
		return
	}
	m.cartReservations.WithLabelValues(result).Inc()
}

// RecordOrderPlaced cuenta la orden y las unidades que consumió.
func (m *StoreMetrics) RecordOrderPlaced(units int, duration time.Duration) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.unitsSold.Add(float64(units))
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordCacheLookup registra un hit o miss del cache de productos.
func (m *StoreMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *StoreMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
