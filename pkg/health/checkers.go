package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when more than limit goroutines are running.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, limit)
		}
		return nil
	}
}

// HeapCheck fails when the live heap grows past limit bytes. The in-memory
// stores never shrink, so this is the signal that a till has been up too long.
func HeapCheck(limit uint64) CheckFunc {
	return func(_ context.Context) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if ms.HeapAlloc > limit {
			return errors.Errorf("heap %d bytes exceeds threshold %d", ms.HeapAlloc, limit)
		}
		return nil
	}
}

// MinCount fails when count reports fewer than minimum records, or errors.
func MinCount(count func(context.Context) (int, error), minimum int) CheckFunc {
	return func(ctx context.Context) error {
		n, err := count(ctx)
		if err != nil {
			return errors.Wrap(err, "count")
		}
		if n < minimum {
			return errors.Errorf("have %d, need at least %d", n, minimum)
		}
		return nil
	}
}
