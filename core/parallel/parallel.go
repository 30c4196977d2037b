// Package parallel runs independent tasks sequentially or across workers while
// keeping results reproducible: with a seed, task i always draws from a random
// stream derived from (seed, i), whichever worker runs it and however many
// workers there are.
package parallel

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cran/utiml/pkg/errors"
	"github.com/cran/utiml/pkg/log"
)

// Task is one unit of work. rng belongs to the task and must not escape it.
type Task[T any] func(rng *rand.Rand) (T, error)

// Seed is an optional base seed.
type Seed struct {
	value int64
	valid bool
}

// Unseeded requests no reseeding; results may differ between runs.
var Unseeded = Seed{}

// SeedOf returns a seed with the given value.
func SeedOf(v int64) Seed {
	return Seed{value: v, valid: true}
}

// Value returns the seed value and whether it is set.
func (s Seed) Value() (int64, bool) {
	return s.value, s.valid
}

// Stream returns the random stream for task index. With an unset seed the
// stream is seeded from the runtime's entropy source.
func (s Seed) Stream(index int) *rand.Rand {
	if !s.valid {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	base := uint64(s.value)
	return rand.New(rand.NewPCG(splitmix64(base), splitmix64(base^(uint64(index)+1)*0x9e3779b97f4a7c15)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Run executes tasks and returns their results in task order.
//
// cores == 1 runs everything on the calling goroutine. cores > 1 partitions
// the tasks into contiguous chunks, one goroutine per chunk. The first failure
// stops workers from starting new tasks; no partial results are returned and
// the failure with the lowest task index is reported as a TrainingError.
func Run[T any](op string, tasks []Task[T], cores int, seed Seed) ([]T, error) {
	if cores < 1 {
		return nil, errors.NewValidationError("cores", "must be at least 1", cores)
	}
	if len(tasks) == 0 {
		return []T{}, nil
	}

	start := time.Now()
	results := make([]T, len(tasks))
	failures := make([]error, len(tasks))
	var failed atomic.Bool

	if cores == 1 {
		var shared *rand.Rand
		if _, ok := seed.Value(); !ok {
			shared = seed.Stream(0)
		}
		for i, task := range tasks {
			rng := shared
			if rng == nil {
				rng = seed.Stream(i)
			}
			if err := runOne(op, task, rng, &results[i]); err != nil {
				failures[i] = err
				break
			}
		}
	} else {
		parallelize(len(tasks), cores, func(from, to int) {
			for i := from; i < to; i++ {
				if failed.Load() {
					return
				}
				if err := runOne(op, tasks[i], seed.Stream(i), &results[i]); err != nil {
					failures[i] = err
					failed.Store(true)
					return
				}
			}
		})
	}

	for i, err := range failures {
		if err != nil {
			return nil, errors.NewTrainingError(op, i, err)
		}
	}

	logger := log.GetLoggerWithName("parallel")
	logger.Debug("Tasks completed",
		log.OperationKey, op,
		log.TasksKey, len(tasks),
		log.CoresKey, cores,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return results, nil
}

func runOne[T any](op string, task Task[T], rng *rand.Rand, out *T) error {
	return errors.SafeExecute(op, func() error {
		v, err := task(rng)
		if err != nil {
			return err
		}
		*out = v
		return nil
	})
}

// parallelize divides items into contiguous ranges, at most one per worker,
// and calls fn for each range concurrently.
func parallelize(items, workers int, fn func(start, end int)) {
	if workers > items {
		workers = items
	}

	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
