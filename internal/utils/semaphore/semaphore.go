package semaphore

import (
	"context"
	"errors"
	"fmt"
)

var ErrAcquire = errors.New("semaphore acquire failed")

// Semaphore bounds the number of concurrent holders.
type Semaphore struct {
	semaCh chan struct{}
}

func New(maxCount uint64) *Semaphore {
	return &Semaphore{
		semaCh: make(chan struct{}, maxCount),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrAcquire, ctx.Err())
	case s.semaCh <- struct{}{}:
		return nil
	}
}

func (s *Semaphore) Release() {
	<-s.semaCh
}

func (s *Semaphore) InUse() int {
	return len(s.semaCh)
}
