package mongodb

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// RendezvousCollection wraps a collection so that every FindOne reads its
// document, then blocks until parties callers have read, then releases them
// together. Tests use it to force concurrent requests to observe the same
// state before any of them writes.
type RendezvousCollection struct {
	Collection

	parties int
	mu      sync.Mutex
	cond    *sync.Cond
	waiting int
	round   int
}

// NewRendezvousCollection wraps inner with a barrier of the given size.
func NewRendezvousCollection(inner Collection, parties int) *RendezvousCollection {
	r := &RendezvousCollection{Collection: inner, parties: parties}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *RendezvousCollection) FindOne(ctx context.Context, filter interface{}) Decoder {
	var doc bson.M
	err := r.Collection.FindOne(ctx, filter).Decode(&doc)
	r.await()
	return &memorySingleResult{doc: doc, err: err}
}

func (r *RendezvousCollection) await() {
	r.mu.Lock()
	round := r.round
	r.waiting++
	if r.waiting == r.parties {
		r.waiting = 0
		r.round++
		r.cond.Broadcast()
	} else {
		for round == r.round {
			r.cond.Wait()
		}
	}
	r.mu.Unlock()
}
