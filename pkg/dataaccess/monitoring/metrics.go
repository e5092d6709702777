package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MongoLatency is the duration of Mongo queries.
	MongoLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_mongo_latency",
			Help: "Duration of Mongo queries",
		},
		[]string{"dal", "query", "database", "collection"},
	)

	// MongoTotalRequests is the total number of Mongo requests.
	MongoTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_mongo_total_requests",
			Help: "Total number of Mongo requests",
		},
		[]string{"dal", "query", "database", "collection"},
	)

	// RedisLatency is the duration of Redis commands.
	RedisLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_redis_latency",
			Help: "Duration of Redis commands",
		},
		[]string{"dal", "command"},
	)

	// RedisTotalRequests is the total number of Redis commands.
	RedisTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_redis_total_requests",
			Help: "Total number of Redis commands",
		},
		[]string{"dal", "command"},
	)
)

// ObserveMongo records a Mongo request and returns the function that records its duration.
func ObserveMongo(dal, query, database, collection string) func() {
	MongoTotalRequests.WithLabelValues(dal, query, database, collection).Inc()
	t := prometheus.NewTimer(MongoLatency.WithLabelValues(dal, query, database, collection))
	return func() {
		t.ObserveDuration()
	}
}

// ObserveRedis records a Redis command and returns the function that records its duration.
func ObserveRedis(dal, command string) func() {
	RedisTotalRequests.WithLabelValues(dal, command).Inc()
	t := prometheus.NewTimer(RedisLatency.WithLabelValues(dal, command))
	return func() {
		t.ObserveDuration()
	}
}
