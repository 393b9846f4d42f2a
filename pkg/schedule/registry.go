package schedule

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrFormNotFound = errors.New("schedule form not found")

type entry struct {
	mu     sync.Mutex
	form   *Form
	owner  string
	opened time.Time
}

// Registry keeps the forms users have open between requests.
type Registry struct {
	mu    sync.Mutex
	forms map[uuid.UUID]*entry
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{forms: make(map[uuid.UUID]*entry), now: time.Now}
}

// Open stores f for owner and returns its id.
func (r *Registry) Open(owner string, f *Form) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.forms[id] = &entry{form: f, owner: owner, opened: r.now()}
	r.mu.Unlock()
	return id
}

func (r *Registry) lookup(id uuid.UUID, owner string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.forms[id]
	if !ok || e.owner != owner {
		return nil, ErrFormNotFound
	}
	return e, nil
}

// With runs fn on the form while holding its lock.
func (r *Registry) With(id uuid.UUID, owner string, fn func(*Form) error) error {
	e, err := r.lookup(id, owner)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.form)
}

// Close resets the form's selections and forgets it.
func (r *Registry) Close(id uuid.UUID, owner string) error {
	e, err := r.lookup(id, owner)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.forms, id)
	r.mu.Unlock()

	e.mu.Lock()
	e.form.Close()
	e.mu.Unlock()
	return nil
}

// Sweep drops forms opened longer than maxAge ago.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.forms {
		if e.opened.Before(cutoff) {
			delete(r.forms, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}
