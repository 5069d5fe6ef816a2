package services

import (
	"math/rand"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkerSelector picks a worker from the available pool at complaint
// creation time. Implementations must return nil for an empty pool;
// creation proceeds unassigned in that case.
type WorkerSelector interface {
	SelectWorker(pool []primitive.ObjectID) *primitive.ObjectID
}

// RandomSelector picks uniformly at random, with no load awareness.
// This matches how the platform has always assigned work.
type RandomSelector struct {
	rng *rand.Rand
}

// NewRandomSelector returns a selector backed by the given source.
// Pass nil to use the shared package-level source.
func NewRandomSelector(rng *rand.Rand) *RandomSelector {
	return &RandomSelector{rng: rng}
}

func (s *RandomSelector) SelectWorker(pool []primitive.ObjectID) *primitive.ObjectID {
	if len(pool) == 0 {
		return nil
	}
	var idx int
	if s.rng != nil {
		idx = s.rng.Intn(len(pool))
	} else {
		idx = rand.Intn(len(pool))
	}
	picked := pool[idx]
	return &picked
}
