package metric

import "github.com/prometheus/client_golang/prometheus"

// StoreStats is the view of the key store the collector reads.
type StoreStats interface {
	Len() int
	Expired() uint64
}

// ClientStats is the view of the client slot allocator the collector reads.
type ClientStats interface {
	InUse() int
	Capacity() int
}

// Collector reports store and client-slot state at scrape time.
type Collector struct {
	store   StoreStats
	clients ClientStats

	keys          *prometheus.Desc
	keysExpired   *prometheus.Desc
	clientsInUse  *prometheus.Desc
	clientsMaxCap *prometheus.Desc
}

// NewCollector creates a collector. Either source may be nil.
func NewCollector(store StoreStats, clients ClientStats) *Collector {
	return &Collector{
		store:   store,
		clients: clients,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys"),
			"Entries currently held, including expired ones not yet evicted",
			nil, nil,
		),
		keysExpired: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "expired_total"),
			"Entries evicted on access after their TTL elapsed",
			nil, nil,
		),
		clientsInUse: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "clients", "in_use"),
			"Client ids currently assigned",
			nil, nil,
		),
		clientsMaxCap: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "clients", "capacity"),
			"Maximum concurrent client ids",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.keysExpired
	ch <- c.clientsInUse
	ch <- c.clientsMaxCap
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.store != nil {
		ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.store.Len()))
		ch <- prometheus.MustNewConstMetric(c.keysExpired, prometheus.CounterValue, float64(c.store.Expired()))
	}
	if c.clients != nil {
		ch <- prometheus.MustNewConstMetric(c.clientsInUse, prometheus.GaugeValue, float64(c.clients.InUse()))
		ch <- prometheus.MustNewConstMetric(c.clientsMaxCap, prometheus.GaugeValue, float64(c.clients.Capacity()))
	}
}
