package heartbeat

import (
	"context"
	"time"

	"capbutton-go/bus"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case t := <-tick.C:
			println("Info:", t.Format("15:04:05"), "heartbeat")
		case msg := <-cfgSub.Channel():
			// Interval arrives in seconds from the embedded config.
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv) * time.Second)
					println("Info: heartbeat interval set to", iv, "seconds")
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
