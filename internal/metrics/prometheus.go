package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_agent_calls_total",
			Help: "Total number of agent calls",
		},
		[]string{"agent", "model", "status"}, // status: success|error|rate_limited
	)

	AgentCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_agent_cost_usd",
			Help: "Total AI cost in USD",
		},
		[]string{"agent", "model"},
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maxwell_agent_latency_seconds",
			Help:    "Agent execution latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Orchestration metrics
	Orchestrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_orchestrations_total",
			Help: "Total number of orchestration runs",
		},
		[]string{"status"}, // status: success|partial|failed
	)

	OrchestrationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maxwell_orchestration_duration_seconds",
			Help:    "Wall-clock orchestration duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	ConflictsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_conflicts_detected_total",
			Help: "Total number of inter-agent conflicts detected",
		},
		[]string{"kind"},
	)

	// Conversation metrics
	ConversationTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_conversation_turns_total",
			Help: "Total number of conversation turns",
		},
		[]string{"path", "status"}, // path: pipeline|conversational
	)

	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"}, // status: success|error
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maxwell_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"}, // database: postgres|clickhouse|redis
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxwell_kafka_messages_total",
			Help: "Total Kafka messages produced",
		},
		[]string{"topic", "status"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(AgentCalls)
	prometheus.MustRegister(AgentCost)
	prometheus.MustRegister(AgentLatency)
	prometheus.MustRegister(AgentTokens)

	prometheus.MustRegister(Orchestrations)
	prometheus.MustRegister(OrchestrationDuration)
	prometheus.MustRegister(ConflictsDetected)
	prometheus.MustRegister(ConversationTurns)

	prometheus.MustRegister(ToolExecutions)
	prometheus.MustRegister(ToolLatency)

	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(KafkaMessages)
}

// Handler returns an HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDBQuery records one storage round trip. Not-found lookups and
// cache misses are not failures; callers pass nil for those.
func ObserveDBQuery(database, operation string, err error) {
	DBQueries.WithLabelValues(database, operation, observedStatus(err)).Inc()
}

// ObserveKafkaPublish records one produced message
func ObserveKafkaPublish(topic string, err error) {
	KafkaMessages.WithLabelValues(topic, observedStatus(err)).Inc()
}

func observedStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
