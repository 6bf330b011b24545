package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chessql/internal/replay"

	"github.com/rs/zerolog"
)

var ErrQueueClosed = errors.New("replay queue is shutting down")

// ReplayTask is one game waiting for a worker
type ReplayTask struct {
	Index    int
	Job      replay.Job
	Response chan<- ReplayResult
}

// ReplayResult carries a worker's analysis back to the submitter
type ReplayResult struct {
	Index    int
	Analysis replay.Analysis
	Duration time.Duration
}

// ReplayQueue replays games on a fixed pool of workers
type ReplayQueue struct {
	tasks   chan ReplayTask
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	log     zerolog.Logger
}

// NewReplayQueue creates a queue with specified worker count
func NewReplayQueue(workerCount int, log zerolog.Logger) *ReplayQueue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &ReplayQueue{
		tasks:   make(chan ReplayTask, 100),
		workers: workerCount,
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
	}

	q.start()
	return q
}

// Workers returns the pool size
func (q *ReplayQueue) Workers() int {
	return q.workers
}

func (q *ReplayQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// worker owns one replayer; boards are never shared between goroutines
func (q *ReplayQueue) worker(id int) {
	defer q.wg.Done()

	r := replay.NewReplayer()
	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return
			}

			start := time.Now()
			result := ReplayResult{
				Index:    task.Index,
				Analysis: r.Analyze(task.Job),
				Duration: time.Since(start),
			}
			q.log.Debug().
				Int("worker", id).
				Int("index", task.Index).
				Int("captures", len(result.Analysis.Events)).
				Dur("took", result.Duration).
				Msg("game replayed")

			select {
			case task.Response <- result:
			case <-time.After(100 * time.Millisecond):
				// Receiver abandoned, discard result
			}

		case <-q.ctx.Done():
			return
		}
	}
}

// Submit adds a task to the queue, blocking until there is room or ctx ends
func (q *ReplayQueue) Submit(ctx context.Context, task ReplayTask) error {
	if q.ctx.Err() != nil {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.tasks <- task:
		return nil
	case <-q.ctx.Done():
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AnalyzeAll replays every job and returns the analyses in job order.
// Submission stops when ctx is cancelled.
func (q *ReplayQueue) AnalyzeAll(ctx context.Context, jobs []replay.Job) ([]replay.Analysis, error) {
	results := make(chan ReplayResult, len(jobs))
	out := make([]replay.Analysis, len(jobs))

	submitted := 0
	var submitErr error
	for i, job := range jobs {
		if err := q.Submit(ctx, ReplayTask{Index: i, Job: job, Response: results}); err != nil {
			submitErr = err
			break
		}
		submitted++
	}

	for received := 0; received < submitted; received++ {
		select {
		case res := <-results:
			out[res.Index] = res.Analysis
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.ctx.Done():
			return nil, ErrQueueClosed
		}
	}

	if submitErr != nil {
		return nil, fmt.Errorf("failed to submit replay: %w", submitErr)
	}
	return out, nil
}

// Shutdown gracefully stops the queue
func (q *ReplayQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
