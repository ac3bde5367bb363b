package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/absmach/greenboard/pkg/storage"
	"github.com/absmach/greenboard/session"
	"k8s.io/utils/clock"
)

// recorder is the Navigator of a server-side view. It keeps the latest
// destination until the view polls its status.
type recorder struct {
	mu   sync.Mutex
	dest string
}

func (r *recorder) Navigate(_ context.Context, dest string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dest = dest
}

func (r *recorder) take() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	dest := r.dest
	r.dest = ""

	return dest
}

type view struct {
	store    *session.Store
	nav      *recorder
	lastSeen time.Time
}

type views struct {
	kv   storage.Storage
	clk  clock.WithDelayedExecution
	opts []session.Option

	mu sync.Mutex
	m  map[string]*view
}

func newViews(kv storage.Storage, clk clock.WithDelayedExecution, opts ...session.Option) *views {
	return &views{
		kv:   kv,
		clk:  clk,
		opts: opts,
		m:    make(map[string]*view),
	}
}

func (vs *views) get(id string) *view {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	v, ok := vs.m[id]
	if !ok {
		nav := &recorder{}
		v = &view{
			store: session.NewStore(session.NewKVPersister(vs.kv, id), nav, vs.clk, vs.opts...),
			nav:   nav,
		}
		vs.m[id] = v
	}
	v.lastSeen = vs.clk.Now()

	return v
}

// lookup returns an existing view without creating one.
func (vs *views) lookup(id string) (*view, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	v, ok := vs.m[id]
	if ok {
		v.lastSeen = vs.clk.Now()
	}

	return v, ok
}

// forget clears the persisted record of a view that is not held in memory.
func (vs *views) forget(ctx context.Context, id string) error {
	return session.NewKVPersister(vs.kv, id).Clear(ctx)
}

// evict drops views not seen for longer than idle. Persisted records stay.
func (vs *views) evict(idle time.Duration) int {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	n := 0
	now := vs.clk.Now()
	for id, v := range vs.m {
		if now.Sub(v.lastSeen) > idle {
			v.store.Close()
			delete(vs.m, id)
			n++
		}
	}

	return n
}

func (vs *views) len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	return len(vs.m)
}

func (vs *views) close() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for id, v := range vs.m {
		v.store.Close()
		delete(vs.m, id)
	}
}
