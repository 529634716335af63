package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-tutordash/pkg/listing"
)

// Call is one Fetch waiting for its answer.
type Call[T any] struct {
	Request listing.Request
	reply   chan reply[T]
}

type reply[T any] struct {
	resp listing.Response[T]
	err  error
}

// Resolve answers the call.
func (c *Call[T]) Resolve(resp listing.Response[T]) {
	c.reply <- reply[T]{resp: resp}
}

// Reject fails the call.
func (c *Call[T]) Reject(err error) {
	c.reply <- reply[T]{err: err}
}

// GatedSource blocks every Fetch until the test resolves it, so tests pick
// the order in which responses arrive.
type GatedSource[T any] struct {
	calls chan *Call[T]

	mu       sync.Mutex
	requests []listing.Request
}

// NewGatedSource returns a source that can queue up to 16 blocked calls.
func NewGatedSource[T any]() *GatedSource[T] {
	return &GatedSource[T]{calls: make(chan *Call[T], 16)}
}

// Fetch implements listing.DataSource.
func (s *GatedSource[T]) Fetch(ctx context.Context, req listing.Request) (listing.Response[T], error) {
	call := &Call[T]{Request: req, reply: make(chan reply[T], 1)}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	s.calls <- call

	select {
	case r := <-call.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return listing.Response[T]{}, ctx.Err()
	}
}

// Next returns the next blocked call.
func (s *GatedSource[T]) Next() *Call[T] {
	return <-s.calls
}

// Requests lists every request received so far.
func (s *GatedSource[T]) Requests() []listing.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]listing.Request(nil), s.requests...)
}

// RecordingSource answers every Fetch immediately through Respond.
type RecordingSource[T any] struct {
	Respond func(req listing.Request) (listing.Response[T], error)

	mu       sync.Mutex
	requests []listing.Request
}

// Fetch implements listing.DataSource.
func (s *RecordingSource[T]) Fetch(_ context.Context, req listing.Request) (listing.Response[T], error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.Respond == nil {
		return listing.Response[T]{Pagination: listing.Pagination{CurrentPage: req.Page, TotalPages: 1}}, nil
	}
	return s.Respond(req)
}

// Requests lists every request received so far.
func (s *RecordingSource[T]) Requests() []listing.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]listing.Request(nil), s.requests...)
}
