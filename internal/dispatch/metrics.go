package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// sendTotal counts send attempts by channel and outcome. Cardinality is
// bounded: two channels, two outcomes.
var sendTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sos_dispatch_sends_total",
		Help: "Total outbound send attempts by channel and outcome.",
	},
	[]string{"channel", "outcome"},
)

func init() {
	prometheus.MustRegister(sendTotal)
}

func observeSend(ch domain.Channel, ok bool) {
	outcome := "delivered"
	if !ok {
		outcome = "failed"
	}
	sendTotal.WithLabelValues(string(ch), outcome).Inc()
}
