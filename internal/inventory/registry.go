package inventory

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/FischerJoao/mindestoque/internal/domain"
)

// Event-bus topics for completed backend mutations. Publishers pass the
// session id first so the registry can route the update to the owning
// collection.
const (
	TopicProductSaved   = "product.saved"   // (sid string, p domain.Product)
	TopicProductDeleted = "product.deleted" // (sid string, id string)
)

// Registry binds one Collection to each live session and applies mutation
// events published by the form and delete handlers.
type Registry struct {
	lister ProductLister
	bus    EventBus.Bus

	mu   sync.RWMutex
	cols map[string]*Collection
}

func NewRegistry(lister ProductLister, bus EventBus.Bus) *Registry {
	r := &Registry{
		lister: lister,
		bus:    bus,
		cols:   make(map[string]*Collection),
	}
	if err := bus.Subscribe(TopicProductSaved, r.onProductSaved); err != nil {
		zap.L().Error("subscribe product.saved failed", zap.Error(err))
	}
	if err := bus.Subscribe(TopicProductDeleted, r.onProductDeleted); err != nil {
		zap.L().Error("subscribe product.deleted failed", zap.Error(err))
	}
	return r
}

// Open creates (or returns) the collection for a session and performs the
// initial load. A fetch failure leaves an empty collection behind; the
// operator sees an empty table and can refresh.
func (r *Registry) Open(ctx context.Context, sess *domain.Session) *Collection {
	r.mu.Lock()
	col, ok := r.cols[sess.ID]
	if !ok {
		col = NewCollection(sess.ID, sess.Token(), r.lister)
		r.cols[sess.ID] = col
	}
	r.mu.Unlock()

	if err := col.Load(ctx); err != nil {
		zap.L().Warn("initial product load failed, table starts empty",
			zap.String("sid", sess.ID), zap.Error(err))
	}
	return col
}

// Get returns the collection bound to sid, nil when the session has no
// collection (not logged in here, or already closed).
func (r *Registry) Get(sid string) *Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cols[sid]
}

// Close drops the session's collection on logout.
func (r *Registry) Close(sid string) {
	r.mu.Lock()
	delete(r.cols, sid)
	r.mu.Unlock()
}

// RefreshAll re-fetches every live collection; used by the background job.
// Failures are logged per collection and never abort the sweep.
func (r *Registry) RefreshAll(ctx context.Context) {
	r.mu.RLock()
	cols := make([]*Collection, 0, len(r.cols))
	for _, col := range r.cols {
		cols = append(cols, col)
	}
	r.mu.RUnlock()

	for _, col := range cols {
		if err := col.Refresh(ctx); err != nil {
			zap.L().Warn("collection refresh failed", zap.String("sid", col.SID()), zap.Error(err))
		}
	}
}

func (r *Registry) onProductSaved(sid string, p domain.Product) {
	if col := r.Get(sid); col != nil {
		col.MergeOne(p)
	}
}

func (r *Registry) onProductDeleted(sid string, id string) {
	if col := r.Get(sid); col != nil {
		col.RemoveByID(id)
	}
}
