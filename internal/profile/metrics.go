package profile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var boostsActivated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "profile_boosts_activated_total",
	Help: "Number of boosts activated by premium members",
})
