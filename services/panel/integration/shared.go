package integration

import (
	"context"
	"time"

	"capbutton-go/bus"
)

func recvOrTimeout(ch <-chan *bus.Message, d time.Duration) (*bus.Message, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m := <-ch:
		return m, nil
	case <-timer.C:
		return nil, context.DeadlineExceeded
	}
}

// topicStr renders a topic for failure messages. The panel and config
// surfaces use string tokens only.
func topicStr(t bus.Topic) string {
	s := ""
	for i, tok := range t {
		if i > 0 {
			s += "/"
		}
		if v, ok := tok.(string); ok {
			s += v
		} else {
			s += "<unk>"
		}
	}
	return s
}
