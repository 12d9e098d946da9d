package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aptchat_stomp_connections",
		Help: "Current number of established STOMP connections",
	})
	ReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aptchat_stomp_reconnects_total",
		Help: "Total number of automatic reconnect attempts",
	})
	MessagesInTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aptchat_messages_received_total",
		Help: "Total number of broadcast frames received",
	})
	MessagesOutTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aptchat_messages_sent_total",
		Help: "Total number of messages published",
	})
	ActiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aptchat_active_subscriptions",
		Help: "Current number of live channel subscriptions",
	})
)

func init() {
	prometheus.MustRegister(Connections, ReconnectsTotal, MessagesInTotal, MessagesOutTotal, ActiveSubscriptions)
}
