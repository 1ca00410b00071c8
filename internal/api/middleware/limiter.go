// Package middleware holds the stateless API's backpressure gate,
// adapted from the teacher's bounded dispatch queue (internal/web/middleware/limiter.go).
package middleware

import "net/http"

type job struct {
	w    http.ResponseWriter
	r    *http.Request
	next http.Handler
	done chan struct{}
}

// Limiter bounds the number of requests admitted into handler logic at
// once, per spec.md §5's "ADMISSION_QUEUE_CAPACITY" backpressure knob: a
// request that cannot be queued fails fast with 503 rather than piling up
// behind a slow Blackboard or Broker.
type Limiter struct {
	queue    chan job
	inflight chan struct{}
}

// NewLimiter builds a Limiter admitting at most queueSize requests
// waiting, maxInflight running concurrently.
func NewLimiter(queueSize, maxInflight int) *Limiter {
	l := &Limiter{
		queue:    make(chan job, queueSize),
		inflight: make(chan struct{}, maxInflight),
	}

	go l.dispatch()

	return l
}

func (l *Limiter) dispatch() {
	for {
		// Take an in-flight slot before receiving, so a request leaves the
		// queue only when it can start running.
		l.inflight <- struct{}{}
		j, ok := <-l.queue
		if !ok {
			<-l.inflight
			return
		}

		go func(j job) {
			defer func() {
				<-l.inflight
				close(j.done)
			}()

			j.next.ServeHTTP(j.w, j.r)
		}(j)
	}
}

// Limit wraps next with the admission queue.
func (l *Limiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		j := job{w: w, r: r, next: next, done: make(chan struct{})}

		select {
		case l.queue <- j:
			select {
			case <-j.done:
			case <-r.Context().Done():
				http.Error(w, "request canceled or timed out", http.StatusGatewayTimeout)
				return
			}
		default:
			http.Error(w, "server busy", http.StatusServiceUnavailable)
			return
		}
	})
}
