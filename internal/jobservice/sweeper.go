package jobservice

import (
	"context"
	"errors"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/logger"
	"github.com/reactome/gsa-orchestrator/internal/model"
	"github.com/reactome/gsa-orchestrator/internal/notify"
)

// Sweeper is the co-resident-with-the-API task from spec.md §5: any
// running job whose active-index entry hasn't been touched for longer
// than its kind's timeout is transitioned to failed with a description
// naming the timeout, regardless of whether any worker ever picked it
// up or crashed mid-flight.
type Sweeper struct {
	store          *Store
	pollInterval   time.Duration
	workerTimeout  time.Duration
	loadingTimeout time.Duration
	sender         notify.Sender
	mailTo         string
}

// NewSweeper builds a Sweeper. workerTimeout applies to analysis and
// report jobs (MAX_WORKER_TIMEOUT); loadingTimeout applies to dataset
// jobs (LOADING_MAX_TIMEOUT), per spec.md §6's two separate timeout
// knobs. sender/mailTo wire the spec.md §7 operator-failure notification;
// mailTo empty disables it.
func NewSweeper(store *Store, pollInterval, workerTimeout, loadingTimeout time.Duration, sender notify.Sender, mailTo string) *Sweeper {
	return &Sweeper{
		store:          store,
		pollInterval:   pollInterval,
		workerTimeout:  workerTimeout,
		loadingTimeout: loadingTimeout,
		sender:         sender,
		mailTo:         mailTo,
	}
}

// Run blocks, sweeping on pollInterval until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	s.sweepKind(ctx, model.KindAnalysis, s.workerTimeout, "worker timeout")
	s.sweepKind(ctx, model.KindReport, s.workerTimeout, "worker timeout")
	s.sweepKind(ctx, model.KindDataset, s.loadingTimeout, "loading timeout")
}

func (s *Sweeper) sweepKind(ctx context.Context, kind model.JobKind, timeout time.Duration, reason string) {
	active, err := s.store.ActiveJobs(ctx, kind)
	if err != nil {
		logger.Log.Error().Err(err).Str("kind", string(kind)).Msg("sweeper: reading active index")
		return
	}

	deadline := time.Now().Add(-timeout).Unix()
	for jobID, lastSeen := range active {
		if lastSeen > deadline {
			continue
		}
		s.fail(ctx, jobID, reason)
	}
}

func (s *Sweeper) fail(ctx context.Context, jobID, reason string) {
	before, err := s.store.GetJob(ctx, jobID)
	alreadyTerminal := err == nil && before.Terminal()

	_, err = s.store.UpdateJob(ctx, jobID, func(job *model.Job) error {
		if job.Terminal() {
			return nil
		}
		job.State = model.StateFailed
		job.Error = reason
		job.Description = reason
		return nil
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("sweeper: failing stalled job")
		return
	}
	logger.Log.Warn().Str("job_id", jobID).Str("reason", reason).Msg("sweeper: job timed out")

	if !alreadyTerminal {
		NotifyOperatorFailure(ctx, s.sender, s.mailTo, jobID, errors.New(reason))
	}
}
