package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zeusync/planetoid/internal/core/events/bus"
	"github.com/zeusync/planetoid/internal/core/observability/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.GetStats()); err != nil {
		s.logger.Error("Failed to encode stats", log.Error(err))
	}
}

// slowDelivery is the delivery time above which a bus publish is logged.
const slowDelivery = 2 * time.Millisecond

// busMonitor enables bus metrics while the server runs and reports slow or
// failing deliveries.
type busMonitor struct {
	logger log.Log
}

func newBusMonitor(logger log.Log) *busMonitor {
	return &busMonitor{logger: logger.With(log.Component("bus"))}
}

func (m *busMonitor) OnPublish(string, string, bus.Event) {}

func (m *busMonitor) OnDelivered(topic, eventType string, handlers int, err error, durationMicros int64) {
	if err != nil {
		m.logger.Warn("Event delivery failed",
			log.String("topic", topic),
			log.String("event", eventType),
			log.Error(err))
	}
	if time.Duration(durationMicros)*time.Microsecond > slowDelivery {
		m.logger.Debug("Slow event delivery",
			log.String("topic", topic),
			log.String("event", eventType),
			log.Int("handlers", handlers),
			log.Int64("micros", durationMicros))
	}
}
