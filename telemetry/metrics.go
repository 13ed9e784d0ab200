package telemetry

// QueryBuckets for local SQLite statement latencies
var QueryBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1, 5}

var (
	// QueriesTotal counts executed statements by type (select, insert, ...) and result (success, failure)
	QueriesTotal CounterVec = noopCounterVec{}

	// QueryDurationSeconds measures statement latency, including both
	// statements of a paginated request
	QueryDurationSeconds Histogram = NoopStat{}

	// PaginatedQueriesTotal counts successful paginated SELECTs
	PaginatedQueriesTotal Counter = NoopStat{}

	// ConnectsTotal counts connect attempts by result (success, failure)
	ConnectsTotal CounterVec = noopCounterVec{}

	// Connected indicates whether a database handle is open (1=yes, 0=no)
	Connected Gauge = NoopStat{}
)

// InitMetrics binds the metric variables to the live registry
func InitMetrics() {
	QueriesTotal = NewCounterVec(
		"queries_total",
		"Total statements executed by type and result",
		[]string{"type", "result"},
	)

	QueryDurationSeconds = NewHistogramWithBuckets(
		"query_duration_seconds",
		"Statement execution latency",
		QueryBuckets,
	)

	PaginatedQueriesTotal = NewCounter(
		"paginated_queries_total",
		"Total paginated SELECT requests served",
	)

	ConnectsTotal = NewCounterVec(
		"connects_total",
		"Database connect attempts by result",
		[]string{"result"},
	)

	Connected = NewGauge(
		"connected",
		"Whether a database handle is currently open",
	)
}
