package flow

import (
	"context"
	"sync"
	"time"

	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/tradlabs/trad-wallet-bot/store"
)

// New returns the in-memory pending-flow store. The invariant it guards:
// at most one flow per user, gone the instant a terminal outcome is reached.
func New() core.FlowStore {
	s := &flowStore{}
	for i := range s.shards {
		s.shards[i].flows = make(map[core.UserID]*core.Flow)
	}

	return s
}

type flowStore struct {
	shards [store.ShardCount]shard
}

type shard struct {
	mux   sync.RWMutex
	flows map[core.UserID]*core.Flow
}

func (s *flowStore) shard(userID core.UserID) *shard {
	return &s.shards[uint64(userID)%store.ShardCount]
}

func (s *flowStore) Begin(ctx context.Context, flow *core.Flow) error {
	sh := s.shard(flow.UserID)

	f := *flow
	f.UpdatedAt = time.Now()

	sh.mux.Lock()
	sh.flows[flow.UserID] = &f
	sh.mux.Unlock()

	return nil
}

func (s *flowStore) Find(ctx context.Context, userID core.UserID) (*core.Flow, error) {
	sh := s.shard(userID)

	sh.mux.RLock()
	f, ok := sh.flows[userID]
	sh.mux.RUnlock()

	if !ok {
		return nil, core.ErrFlowNotFound
	}

	cloned := *f
	return &cloned, nil
}

func (s *flowStore) Update(ctx context.Context, flow *core.Flow) error {
	sh := s.shard(flow.UserID)

	f := *flow
	f.UpdatedAt = time.Now()

	sh.mux.Lock()
	defer sh.mux.Unlock()

	if _, ok := sh.flows[flow.UserID]; !ok {
		return core.ErrFlowNotFound
	}

	sh.flows[flow.UserID] = &f
	return nil
}

func (s *flowStore) Clear(ctx context.Context, userID core.UserID) error {
	sh := s.shard(userID)

	sh.mux.Lock()
	delete(sh.flows, userID)
	sh.mux.Unlock()

	return nil
}

func (s *flowStore) ListIdle(ctx context.Context, cutoff time.Time) ([]core.UserID, error) {
	var idle []core.UserID

	for i := range s.shards {
		sh := &s.shards[i]
		sh.mux.RLock()
		for userID, f := range sh.flows {
			if f.UpdatedAt.Before(cutoff) {
				idle = append(idle, userID)
			}
		}
		sh.mux.RUnlock()
	}

	return idle, nil
}
