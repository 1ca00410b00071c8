// Package model defines the shared data types that move between the API,
// the workers, and the Blackboard.
package model

import "time"

// JobKind identifies which worker pool owns a job.
type JobKind string

const (
	KindAnalysis JobKind = "analysis"
	KindDataset  JobKind = "dataset"
	KindReport   JobKind = "report"
)

// JobState is the monotonic lifecycle state of a Job.
type JobState string

const (
	StateRunning  JobState = "running"
	StateComplete JobState = "complete"
	StateFailed   JobState = "failed"
)

// Job is the status record seeded by the API and mutated only by the
// worker that owns it (or by the API on terminal transitions such as the
// stall sweeper).
type Job struct {
	ID          string    `json:"id"`
	Kind        JobKind   `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
	State       JobState  `json:"state"`
	Progress    float64   `json:"progress"`
	Description string    `json:"description"`
	PayloadRef  string    `json:"payload_ref,omitempty"`
	ResultRef   string    `json:"result_ref,omitempty"`
	Error       string    `json:"error,omitempty"`

	// DatasetID is set on DatasetLoadingStatus completion; kept here so the
	// status record and the ExternalData pointer share one struct shape.
	DatasetID string `json:"dataset_id,omitempty"`

	// Reports lists the artifacts a report job has produced so far.
	Reports []ReportArtifact `json:"reports,omitempty"`
}

// Terminal reports whether no further transition is legal from this state.
func (j Job) Terminal() bool {
	return j.State == StateComplete || j.State == StateFailed
}

// ParameterType is the dynamic type tag attached to a Parameter by the
// method catalog.
type ParameterType string

const (
	ParamInt    ParameterType = "int"
	ParamFloat  ParameterType = "float"
	ParamString ParameterType = "string"
)

// ParameterScope controls whether a parameter applies to a whole analysis,
// a single dataset, or system behavior (e-mail, report requests).
type ParameterScope string

const (
	ScopeAnalysis ParameterScope = "analysis"
	ScopeDataset  ParameterScope = "dataset"
	ScopeCommon   ParameterScope = "common"
)

// Parameter is a single name/value pair as submitted by the client. Value
// is always carried as a string; coercion against the declared
// ParameterType happens at admission.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DatasetType enumerates the accepted inline dataset shapes.
type DatasetType string

const (
	DatasetRNASeqCounts    DatasetType = "rnaseq_counts"
	DatasetRNASeqNorm      DatasetType = "rnaseq_norm"
	DatasetProteomicsInt   DatasetType = "proteomics_int"
	DatasetProteomicsSC    DatasetType = "proteomics_sc"
	DatasetMicroarrayNorm  DatasetType = "microarray_norm"
)

// Design assigns samples to comparison groups and carries arbitrary
// additional covariate arrays of the same arity as Samples.
type Design struct {
	Samples    []string `json:"samples"`
	Comparison struct {
		Group1 string `json:"group1"`
		Group2 string `json:"group2"`
	} `json:"comparison"`
	AnalysisGroup []string            `json:"analysisGroup"`
	Covariates    map[string][]string `json:"covariates,omitempty"`
}

// Dataset is the inline expression matrix submitted as part of an
// AnalysisInput. Data is tab-delimited: header row of sample labels with a
// leading tab, subsequent rows beginning with a gene/protein identifier.
type Dataset struct {
	Name       string      `json:"name"`
	Type       DatasetType `json:"type"`
	Data       string      `json:"data"`
	Design     *Design     `json:"design,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// AnalysisInput is the validated, normalized request body serialized
// immutably into the queued analysis work item.
type AnalysisInput struct {
	JobID      string      `json:"job_id,omitempty"`
	MethodName string      `json:"method_name"`
	Datasets   []Dataset   `json:"datasets"`
	Parameters []Parameter `json:"parameters,omitempty"`

	// MaxAttempts is a hint carried alongside the job id for the worker's
	// own bookkeeping; the Broker's own delivery-count limit is separate.
	MaxAttempts int `json:"max_attempts,omitempty"`
}

// ExternalData is the normalized record a Dataset Loader writes once an
// external source has been fetched and converted.
type ExternalData struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Type               string              `json:"type"`
	Group             string              `json:"group"`
	SampleIDs         []string            `json:"sample_ids"`
	SampleMetadata    map[string][]string `json:"sample_metadata"`
	DefaultParameters []Parameter         `json:"default_parameters,omitempty"`
}

// AnalysisResult is written once by the Analysis Worker on success and
// never mutated afterward.
type AnalysisResult struct {
	Release      string                 `json:"release"`
	Results      map[string]string      `json:"results"`
	FoldChanges  map[string]string      `json:"fold_changes,omitempty"`
	ReactomeLinks map[string]string     `json:"reactome_links,omitempty"`
	Mappings     map[string]string      `json:"mappings,omitempty"`
}

// ReportArtifact is one spreadsheet/PDF/notification output referenced
// from a ReportStatus record.
type ReportArtifact struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Mimetype string `json:"mimetype"`
}

// Method describes one selectable analysis kernel and the parameters it
// accepts, served by GET /methods and used by admission-time validation.
type Method struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  []MethodParameter `json:"parameters"`
}

// MethodParameter is one entry in a Method's parameter catalog.
type MethodParameter struct {
	Name    string         `json:"name"`
	Type    ParameterType  `json:"type"`
	Scope   ParameterScope `json:"scope"`
	Default string         `json:"default,omitempty"`
	Values  []string       `json:"values,omitempty"`
}

// DataType is a catalog entry served by GET /types.
type DataType struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExternalDatasource is a catalog entry served by GET /data/sources.
type ExternalDatasource struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	LoaderKind        string      `json:"loader_kind"`
	DefaultParameters []Parameter `json:"default_parameters,omitempty"`
}
