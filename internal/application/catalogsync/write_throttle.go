package catalogsync

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrentWrites cupo de escrituras simultáneas si no se configura otro.
const DefaultMaxConcurrentWrites = 8

// WriteThrottle limita las mutaciones concurrentes a la base para dejar conexiones libres a las
// lecturas. Se comparte una instancia por proceso.
type WriteThrottle struct {
	sem *semaphore.Weighted
	max int
}

// NewWriteThrottle crea el gate con max escrituras simultáneas (<= 0 usa el default).
func NewWriteThrottle(max int) *WriteThrottle {
	if max <= 0 {
		max = DefaultMaxConcurrentWrites
	}
	return &WriteThrottle{sem: semaphore.NewWeighted(int64(max)), max: max}
}

// Max devuelve el cupo configurado.
func (t *WriteThrottle) Max() int { return t.max }

// Do ejecuta fn con un cupo tomado. La espera respeta ctx; el cupo se libera al terminar fn,
// incluso si falla o entra en pánico.
func (t *WriteThrottle) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("write throttle: %w", err)
	}
	defer t.sem.Release(1)
	return fn(ctx)
}
