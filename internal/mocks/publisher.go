package mocks

import (
	"context"
	"sync"
)

// PublishCall records one realtime publish.
type PublishCall struct {
	Channel string
	Event   string
	Payload any
}

// PublisherSpy captures realtime publishes for assertions. Err, when set, is
// returned from every Publish to exercise the fire-and-forget path.
type PublisherSpy struct {
	mu    sync.Mutex
	Calls []PublishCall
	Err   error
}

func (s *PublisherSpy) Publish(ctx context.Context, channel string, event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, PublishCall{Channel: channel, Event: event, Payload: payload})
	return s.Err
}

// CallsFor returns the publishes that went to a channel.
func (s *PublisherSpy) CallsFor(channel string) []PublishCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PublishCall
	for _, call := range s.Calls {
		if call.Channel == channel {
			out = append(out, call)
		}
	}
	return out
}
