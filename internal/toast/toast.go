// Package toast queues short-lived notifications for the next rendered page.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Kind is the severity of a toast.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// DefaultTTL is how long a toast stays on screen.
const DefaultTTL = 3 * time.Second

// Toast is a single notification.
type Toast struct {
	ID        string
	Kind      Kind
	Message   string
	CreatedAt time.Time
	TTL       time.Duration
}

// TTLMillis is the display time handed to the page script.
func (t Toast) TTLMillis() int64 {
	return t.TTL.Milliseconds()
}

// Sink receives toasts for one viewer.
type Sink interface {
	Push(kind Kind, message string)
}

// Queue holds pending toasts per key (a session id, or a visitor cookie
// before sign-in). Keys not drained within the retention window are dropped.
type Queue struct {
	mu      sync.Mutex
	pending *expirable.LRU[string, []Toast]
	ttl     time.Duration
}

// NewQueue creates a queue. ttl is the display time of each toast.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		pending: expirable.NewLRU[string, []Toast](
			4096,
			nil,
			5*time.Minute,
		),
		ttl: ttl,
	}
}

// Push appends a toast for key.
func (q *Queue) Push(key string, kind Kind, message string) Toast {
	t := Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
		TTL:       q.ttl,
	}
	if key == "" {
		return t
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	list, _ := q.pending.Get(key)
	q.pending.Add(key, append(list, t))
	return t
}

// Drain returns and removes the toasts queued for key, oldest first.
func (q *Queue) Drain(key string) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	list, ok := q.pending.Get(key)
	if !ok {
		return nil
	}
	q.pending.Remove(key)
	return list
}

// Peek returns the toasts queued for key without removing them.
func (q *Queue) Peek(key string) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	list, _ := q.pending.Get(key)
	out := make([]Toast, len(list))
	copy(out, list)
	return out
}

// Purge drops everything queued for key.
func (q *Queue) Purge(key string) {
	q.pending.Remove(key)
}

// Move hands the toasts of one key to another, used when a visitor signs in.
func (q *Queue) Move(from, to string) {
	if from == "" || to == "" || from == to {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	list, ok := q.pending.Get(from)
	if !ok {
		return
	}
	q.pending.Remove(from)
	existing, _ := q.pending.Get(to)
	q.pending.Add(to, append(existing, list...))
}

// For returns a Sink bound to key.
func (q *Queue) For(key string) Sink {
	return keyed{q: q, key: key}
}

type keyed struct {
	q   *Queue
	key string
}

func (k keyed) Push(kind Kind, message string) {
	k.q.Push(k.key, kind, message)
}

// Recorder is a Sink that keeps toasts in memory.
type Recorder struct {
	mu     sync.Mutex
	Toasts []Toast
}

func (r *Recorder) Push(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Toasts = append(r.Toasts, Toast{Kind: kind, Message: message, TTL: DefaultTTL})
}

// Last returns the most recent toast, or the zero Toast.
func (r *Recorder) Last() Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Toasts) == 0 {
		return Toast{}
	}
	return r.Toasts[len(r.Toasts)-1]
}
