package jobservice

import (
	"context"
	"strconv"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/blackboard"
	"github.com/reactome/gsa-orchestrator/internal/model"
	"github.com/reactome/gsa-orchestrator/internal/storage"
	"github.com/reactome/gsa-orchestrator/internal/util"
)

// Store is the Blackboard-plus-object-storage composite every role reads
// and writes jobs through. Small JSON/msgpack status records live in the
// Blackboard directly; large blobs (results, report artifacts) are
// proxied to object storage so the Blackboard never holds oversized
// values — the same split the teacher's job_service keeps between its
// cache and its MinIO client.
type Store struct {
	bb      blackboard.Blackboard
	objects storage.Storage

	statusTTL  time.Duration
	resultTTL  time.Duration
	datasetTTL time.Duration
}

// NewStore builds a Store with the given TTLs (spec.md §6 calls these
// T_status, T_result, T_dataset).
func NewStore(bb blackboard.Blackboard, objects storage.Storage, statusTTL, resultTTL, datasetTTL time.Duration) *Store {
	return &Store{bb: bb, objects: objects, statusTTL: statusTTL, resultTTL: resultTTL, datasetTTL: datasetTTL}
}

// NextID allocates job_id = prefix + atomic_increment(Blackboard,
// "counter:{kind}"), per spec.md §4.1 step 3 and §3's uniqueness
// invariant.
func (s *Store) NextID(ctx context.Context, kind, prefix string) (string, error) {
	n, err := s.bb.AtomicIncrement(ctx, util.CounterKey(kind))
	if err != nil {
		return "", NewInfrastructureError(err, "allocating %s id: %v", kind, err)
	}
	return prefixedID(prefix, n), nil
}

// GetJob reads the status record for id. Returns blackboard.ErrNotFound
// if absent.
func (s *Store) GetJob(ctx context.Context, id string) (model.Job, error) {
	var job model.Job
	raw, err := s.bb.Get(ctx, util.StatusKey(id))
	if err != nil {
		return job, err
	}
	if err := blackboard.Decode(raw, &job); err != nil {
		return job, NewInfrastructureError(err, "decoding status for %s: %v", id, err)
	}
	return job, nil
}

// SeedJob writes the initial status record for a freshly admitted job. It
// fails if a record already exists under this id (a create-once guard).
func (s *Store) SeedJob(ctx context.Context, job model.Job) error {
	enc, err := blackboard.Encode(job)
	if err != nil {
		return NewInfrastructureError(err, "encoding status for %s: %v", job.ID, err)
	}
	if err := s.bb.CompareAndSet(ctx, util.StatusKey(job.ID), nil, enc, s.statusTTL); err != nil {
		return NewInfrastructureError(err, "seeding status for %s: %v", job.ID, err)
	}
	if !job.Terminal() {
		_ = s.trackActive(ctx, job.Kind, job.ID)
	}
	return nil
}

// GetReportJob reads the report status record addressed by the analysis
// job_id it refers to (util.ReportStatusKey), distinct from GetJob's
// status:{job_id} space since the two can coexist for the same id.
func (s *Store) GetReportJob(ctx context.Context, analysisJobID string) (model.Job, error) {
	var job model.Job
	raw, err := s.bb.Get(ctx, util.ReportStatusKey(analysisJobID))
	if err != nil {
		return job, err
	}
	if err := blackboard.Decode(raw, &job); err != nil {
		return job, NewInfrastructureError(err, "decoding report status for %s: %v", analysisJobID, err)
	}
	return job, nil
}

// SeedReportJob writes the initial report status record, or is a no-op if
// one already exists (a redelivered report message observing a record it
// already created).
func (s *Store) SeedReportJob(ctx context.Context, job model.Job) error {
	enc, err := blackboard.Encode(job)
	if err != nil {
		return NewInfrastructureError(err, "encoding report status for %s: %v", job.ID, err)
	}
	if err := s.bb.CompareAndSet(ctx, util.ReportStatusKey(job.ID), nil, enc, s.statusTTL); err != nil {
		if err == blackboard.ErrConflict {
			return nil
		}
		return NewInfrastructureError(err, "seeding report status for %s: %v", job.ID, err)
	}
	if !job.Terminal() {
		_ = s.trackActive(ctx, model.KindReport, job.ID)
	}
	return nil
}

// UpdateReportJob is UpdateJob's analog for the report status key space.
func (s *Store) UpdateReportJob(ctx context.Context, analysisJobID string, mutate func(*model.Job) error) (model.Job, error) {
	const maxAttempts = 8
	var last model.Job
	for attempt := 0; attempt < maxAttempts; attempt++ {
		current, err := s.GetReportJob(ctx, analysisJobID)
		if err != nil {
			return model.Job{}, err
		}
		last = current

		next := current
		if err := mutate(&next); err != nil {
			return model.Job{}, err
		}

		expEnc, err := blackboard.Encode(current)
		if err != nil {
			return model.Job{}, err
		}
		nextEnc, err := blackboard.Encode(next)
		if err != nil {
			return model.Job{}, err
		}
		if err := s.bb.CompareAndSet(ctx, util.ReportStatusKey(analysisJobID), expEnc, nextEnc, s.statusTTL); err != nil {
			if err == blackboard.ErrConflict {
				continue
			}
			return model.Job{}, err
		}
		if next.Terminal() {
			_ = s.untrackActive(ctx, model.KindReport, next.ID)
		} else {
			_ = s.touchActive(ctx, model.KindReport, next.ID)
		}
		return next, nil
	}
	return last, NewInfrastructureError(nil, "too many concurrent writers for report status %s", analysisJobID)
}

// activeIndexKey is the Blackboard key for the stall sweeper's
// jobID->last-seen-time index, kept separate from the status records
// themselves so sweeping never competes with the same CAS slot a worker
// is writing to.
func activeIndexKey(kind model.JobKind) string {
	return "sweep:active:" + string(kind)
}

// trackActive adds jobID to the active index with the current time.
func (s *Store) trackActive(ctx context.Context, kind model.JobKind, jobID string) error {
	return s.mutateActiveIndex(ctx, kind, func(idx map[string]int64) {
		idx[jobID] = nowUnix()
	})
}

// touchActive refreshes jobID's last-seen time, used on every progress
// update and status transition.
func (s *Store) touchActive(ctx context.Context, kind model.JobKind, jobID string) error {
	return s.trackActive(ctx, kind, jobID)
}

// untrackActive removes jobID once it reaches a terminal state.
func (s *Store) untrackActive(ctx context.Context, kind model.JobKind, jobID string) error {
	return s.mutateActiveIndex(ctx, kind, func(idx map[string]int64) {
		delete(idx, jobID)
	})
}

// ActiveJobs returns the jobID->last-seen-unix-time index for kind, used
// by the stall sweeper.
func (s *Store) ActiveJobs(ctx context.Context, kind model.JobKind) (map[string]int64, error) {
	return s.readActiveIndex(ctx, kind)
}

func (s *Store) readActiveIndex(ctx context.Context, kind model.JobKind) (map[string]int64, error) {
	raw, err := s.bb.Get(ctx, activeIndexKey(kind))
	if err == blackboard.ErrNotFound {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, err
	}
	idx := map[string]int64{}
	if err := blackboard.Decode(raw, &idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *Store) mutateActiveIndex(ctx context.Context, kind model.JobKind, mutate func(map[string]int64)) error {
	const maxAttempts = 8
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := s.bb.Get(ctx, activeIndexKey(kind))
		var current map[string]int64
		if err == blackboard.ErrNotFound {
			current = map[string]int64{}
			raw = nil
		} else if err != nil {
			return err
		} else {
			current = map[string]int64{}
			if err := blackboard.Decode(raw, &current); err != nil {
				return err
			}
		}

		next := make(map[string]int64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		mutate(next)

		nextEnc, err := blackboard.Encode(next)
		if err != nil {
			return err
		}
		if err := s.bb.CompareAndSet(ctx, activeIndexKey(kind), raw, nextEnc, 0); err != nil {
			if err == blackboard.ErrConflict {
				continue
			}
			return err
		}
		return nil
	}
	return NewInfrastructureError(nil, "too many concurrent writers for sweep index %s", kind)
}

// CompareAndSetJob atomically replaces the status record for job.ID,
// requiring the caller to have read `expected` first. This is the only
// path that mutates a status record, preserving the monotonicity
// invariant from spec.md §3.
func (s *Store) CompareAndSetJob(ctx context.Context, expected, next model.Job) error {
	expEnc, err := blackboard.Encode(expected)
	if err != nil {
		return NewInfrastructureError(err, "encoding expected status for %s: %v", expected.ID, err)
	}
	nextEnc, err := blackboard.Encode(next)
	if err != nil {
		return NewInfrastructureError(err, "encoding next status for %s: %v", next.ID, err)
	}
	ttl := s.statusTTL
	if next.Terminal() {
		ttl = s.statusTTL
	}
	if err := s.bb.CompareAndSet(ctx, util.StatusKey(next.ID), expEnc, nextEnc, ttl); err != nil {
		return err
	}
	return nil
}

// PutResult writes a completed AnalysisResult's serialized form to object
// storage under result:{job_id}, per spec.md §6's persisted-state layout.
func (s *Store) PutResult(ctx context.Context, jobID string, data []byte) error {
	if err := s.objects.Upload(ctx, util.ResultKey(jobID), data, "application/octet-stream"); err != nil {
		return NewInfrastructureError(err, "writing result for %s: %v", jobID, err)
	}
	return nil
}

// GetResult reads a completed result blob.
func (s *Store) GetResult(ctx context.Context, jobID string) ([]byte, error) {
	return s.objects.Download(ctx, util.ResultKey(jobID))
}

// PutDataset writes an ExternalData record. Records are small enough to
// live in the Blackboard directly, unlike result/report blobs.
func (s *Store) PutDataset(ctx context.Context, ds model.ExternalData) error {
	enc, err := blackboard.Encode(ds)
	if err != nil {
		return NewInfrastructureError(err, "encoding dataset %s: %v", ds.ID, err)
	}
	if err := s.bb.Put(ctx, util.DatasetKey(ds.ID), enc, s.datasetTTL); err != nil {
		return NewInfrastructureError(err, "writing dataset %s: %v", ds.ID, err)
	}
	return nil
}

// GetDataset reads an ExternalData record.
func (s *Store) GetDataset(ctx context.Context, datasetID string) (model.ExternalData, error) {
	var ds model.ExternalData
	raw, err := s.bb.Get(ctx, util.DatasetKey(datasetID))
	if err != nil {
		return ds, err
	}
	if err := blackboard.Decode(raw, &ds); err != nil {
		return ds, NewInfrastructureError(err, "decoding dataset %s: %v", datasetID, err)
	}
	return ds, nil
}

// PutReportArtifact writes one named report artifact blob to object
// storage under report:{job_id}:{name}. Writes are idempotent by key, so
// redelivery of a report message is a no-op on contents (spec.md §8).
func (s *Store) PutReportArtifact(ctx context.Context, jobID, name string, data []byte, mimetype string) error {
	if err := s.objects.Upload(ctx, util.ReportArtifactKey(jobID, name), data, mimetype); err != nil {
		return NewInfrastructureError(err, "writing report artifact %s/%s: %v", jobID, name, err)
	}
	return nil
}

// GetReportArtifact reads one named report artifact blob.
func (s *Store) GetReportArtifact(ctx context.Context, jobID, name string) ([]byte, error) {
	return s.objects.Download(ctx, util.ReportArtifactKey(jobID, name))
}

// UpdateJob reads the current status record, applies mutate, and
// compare-and-sets it back, retrying on concurrent-writer conflicts. This
// is the only way job status should ever change outside of SeedJob,
// keeping the monotonic-transition invariant in one place.
func (s *Store) UpdateJob(ctx context.Context, jobID string, mutate func(*model.Job) error) (model.Job, error) {
	const maxAttempts = 8
	var last model.Job
	for attempt := 0; attempt < maxAttempts; attempt++ {
		current, err := s.GetJob(ctx, jobID)
		if err != nil {
			return model.Job{}, err
		}
		last = current

		next := current
		if err := mutate(&next); err != nil {
			return model.Job{}, err
		}

		if err := s.CompareAndSetJob(ctx, current, next); err != nil {
			if err == blackboard.ErrConflict {
				continue
			}
			return model.Job{}, err
		}
		if next.Terminal() {
			_ = s.untrackActive(ctx, next.Kind, next.ID)
		} else {
			_ = s.touchActive(ctx, next.Kind, next.ID)
		}
		return next, nil
	}
	return last, NewInfrastructureError(nil, "too many concurrent writers for job %s", jobID)
}

func nowUnix() int64 { return time.Now().Unix() }

func prefixedID(prefix string, n int64) string {
	return prefix + padCounter(n)
}

func padCounter(n int64) string {
	const width = 8
	s := strconv.FormatInt(n, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
