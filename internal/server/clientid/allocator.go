// Package clientid hands out small integer client ids from a bounded pool.
package clientid

import (
	"context"
	"fmt"
	"sync"

	pool "github.com/jolestar/go-commons-pool/v2"

	"github.com/yndnr/minikv/internal/core/domain"
)

// DefaultCapacity is the default number of concurrent clients.
const DefaultCapacity = 100

// slot is the pooled object; its pointer identity is what the pool tracks.
type slot struct {
	id int
}

// slotFactory creates slots with the lowest free id.
type slotFactory struct {
	mu   sync.Mutex
	free []int
	next int
}

func (f *slotFactory) MakeObject(_ context.Context) (*pool.PooledObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var id int
	if n := len(f.free); n > 0 {
		id = f.free[n-1]
		f.free = f.free[:n-1]
	} else {
		id = f.next
		f.next++
	}
	return pool.NewPooledObject(&slot{id: id}), nil
}

func (f *slotFactory) DestroyObject(_ context.Context, obj *pool.PooledObject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.free = append(f.free, obj.Object.(*slot).id)
	return nil
}

func (f *slotFactory) ValidateObject(context.Context, *pool.PooledObject) bool { return true }

func (f *slotFactory) ActivateObject(context.Context, *pool.PooledObject) error { return nil }

func (f *slotFactory) PassivateObject(context.Context, *pool.PooledObject) error { return nil }

// Allocator is a bounded pool of client ids in [0, capacity).
type Allocator struct {
	pool     *pool.ObjectPool
	capacity int

	mu    sync.Mutex
	inUse map[int]*slot
}

// New creates an allocator for capacity concurrent clients.
func New(ctx context.Context, capacity int) (*Allocator, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("clientid: capacity must be positive, got %d", capacity)
	}

	cfg := pool.NewDefaultPoolConfig()
	cfg.MaxTotal = capacity
	cfg.MaxIdle = capacity
	cfg.MinIdle = 0
	cfg.BlockWhenExhausted = false
	cfg.LIFO = true

	return &Allocator{
		pool:     pool.NewObjectPool(ctx, &slotFactory{}, cfg),
		capacity: capacity,
		inUse:    make(map[int]*slot, capacity),
	}, nil
}

// Acquire returns a free client id. When every id is in use it returns
// domain.ErrClientsExhausted; callers must treat this as a capacity limit
// and not retry.
func (a *Allocator) Acquire(ctx context.Context) (int, error) {
	obj, err := a.pool.BorrowObject(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, domain.ErrClientsExhausted.Wrap(err)
	}

	s := obj.(*slot)
	a.mu.Lock()
	a.inUse[s.id] = s
	a.mu.Unlock()
	return s.id, nil
}

// Release returns id to the pool.
func (a *Allocator) Release(ctx context.Context, id int) error {
	a.mu.Lock()
	s, ok := a.inUse[id]
	if ok {
		delete(a.inUse, id)
	}
	a.mu.Unlock()

	if !ok {
		return domain.ErrUnknownClient.WithDetails("id %d", id)
	}
	if err := a.pool.ReturnObject(ctx, s); err != nil {
		return fmt.Errorf("clientid: return %d: %w", id, err)
	}
	return nil
}

// InUse returns the number of ids currently handed out.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inUse)
}

// Capacity returns the maximum number of concurrent ids.
func (a *Allocator) Capacity() int {
	return a.capacity
}

// Close releases the pool's resources.
func (a *Allocator) Close(ctx context.Context) {
	a.pool.Close(ctx)
}
