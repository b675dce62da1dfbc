package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/config"
	"github.com/vuthanhlam/quizbank/internal/repository"
	"github.com/vuthanhlam/quizbank/internal/taskqueue"
	"gorm.io/gorm"
)

// WorkerPool drains the generation task queue with a bounded set of
// workers. Each job runs under the pool's own context and a fresh gorm
// session, so a cancelled submission request never tears down an in-flight
// generation: results must still land in the progress store for polling.
type WorkerPool struct {
	svc          GenerationService
	queue        taskqueue.Queue
	questionRepo repository.QuestionRepository
	db           *gorm.DB

	concurrency  int
	pollInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorkerPool(
	svc GenerationService,
	queue taskqueue.Queue,
	questionRepo repository.QuestionRepository,
	db *gorm.DB,
	cfg *config.Config,
) *WorkerPool {
	concurrency := cfg.Generation.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	poll := cfg.Generation.QueuePollInterval
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &WorkerPool{
		svc:          svc,
		queue:        queue,
		questionRepo: questionRepo,
		db:           db,
		concurrency:  concurrency,
		pollInterval: poll,
	}
}

// Start launches the workers. It returns immediately; Stop waits for
// in-flight jobs to finish.
func (p *WorkerPool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", p.concurrency).Dur("pollInterval", p.pollInterval).Msg("Generation worker pool started")
}

func (p *WorkerPool) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("Generation worker pool stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		item, err := p.queue.Dequeue(ctx)
		if err != nil {
			log.Error().Err(err).Int("worker", id).Msg("Failed to dequeue generation task")
			continue
		}
		if item == nil {
			continue
		}

		log.Info().Int("worker", id).Str("taskID", item.TaskID).Msg("Worker picked up generation task")

		// Fresh session per job: background work must not share a
		// request-scoped persistence handle.
		jobRepo := p.questionRepo.WithDB(p.db.Session(&gorm.Session{NewDB: true}))
		p.svc.RunTask(ctx, item, jobRepo)
	}
}
