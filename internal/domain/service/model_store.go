package service

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bibbank/bib/services/deadstock-service/internal/domain/model"
)

// ModelStore owns the served TrainedModel. Readers load the current snapshot
// lock-free; retrains are serialized and publish a whole new snapshot.
type ModelStore struct {
	current atomic.Pointer[TrainedModel]
	train   sync.Mutex
}

// NewModelStore creates an empty store. Current reports model.ErrNotReady
// until the first successful Retrain.
func NewModelStore() *ModelStore {
	return &ModelStore{}
}

// Current returns the served model snapshot.
func (s *ModelStore) Current() (*TrainedModel, error) {
	m := s.current.Load()
	if m == nil {
		return nil, model.ErrNotReady
	}
	return m, nil
}

// Ready reports whether a model has been published.
func (s *ModelStore) Ready() bool {
	return s.current.Load() != nil
}

// Retrain runs fit while holding the training lock and publishes its result.
// Concurrent calls run one after another. On error the previous snapshot
// stays in place.
func (s *ModelStore) Retrain(fit func() (*TrainedModel, error)) (*TrainedModel, error) {
	s.train.Lock()
	defer s.train.Unlock()

	m, err := fit()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("retrain produced no model")
	}
	s.current.Store(m)
	return m, nil
}
