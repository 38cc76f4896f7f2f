package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors agrupa as métricas do leaderboard.
// Os métodos têm a assinatura dos callbacks do service e do consumer.
type Collectors struct {
	recomputations *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	skipped        prometheus.Counter
	received       *prometheus.CounterVec
	events         *prometheus.CounterVec
}

// New cria e registra os collectors no registry informado
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		recomputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_recomputations_total",
			Help: "recálculos de leaderboard por gatilho e resultado",
		}, []string{"trigger", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leaderboard_recompute_duration_seconds",
			Help:    "duração do recálculo de uma pool",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_skipped_predictions_total",
			Help: "palpites ignorados de usuários fora da pool",
		}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_events_received_total",
			Help: "mensagens lidas do Kafka por tópico",
		}, []string{"topic"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_events_consumed_total",
			Help: "eventos consumidos por tópico e resultado",
		}, []string{"topic", "result"}),
	}
	reg.MustRegister(c.recomputations, c.duration, c.skipped, c.received, c.events)
	return c
}

func (c *Collectors) Recomputed(trigger string, took time.Duration) {
	c.recomputations.WithLabelValues(trigger, "ok").Inc()
	c.duration.WithLabelValues(trigger).Observe(took.Seconds())
}

func (c *Collectors) Failed(trigger string) {
	c.recomputations.WithLabelValues(trigger, "error").Inc()
}

func (c *Collectors) Skipped(n int) {
	c.skipped.Add(float64(n))
}

// Consumed conta uma mensagem lida, antes do processamento
func (c *Collectors) Consumed(topic string) {
	c.received.WithLabelValues(topic).Inc()
}

// Event conta um evento processado (result: ok | invalid | dlq | ignored | dlq_failed)
func (c *Collectors) Event(topic, result string) {
	c.events.WithLabelValues(topic, result).Inc()
}
