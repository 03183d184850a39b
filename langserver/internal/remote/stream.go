package remote

import (
	"context"
	"sync"
)

type stream struct {
	id     string
	client *client

	mu     sync.Mutex
	queue  []*StreamItem
	err    error
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newStream(id string, c *client) *stream {
	return &stream{
		id:     id,
		client: c,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push never blocks so the connection read loop keeps going.
func (s *stream) push(item *StreamItem) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, item)
	s.mu.Unlock()
	s.wake()
}

func (s *stream) finish(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.done) })
	s.wake()
}

func (s *stream) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *stream) Next(ctx context.Context) (*StreamItem, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			item := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return item, nil
		}
		err := s.err
		s.mu.Unlock()

		if err != nil {
			return nil, err
		}

		select {
		case <-s.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *stream) Close() error {
	s.client.cancel(s.id)
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
	s.finish(context.Canceled)
	return nil
}
