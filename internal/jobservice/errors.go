// Package jobservice implements the admission, status-tracking, and
// stall-sweeping logic shared by the API and the three worker roles. It
// is the load-bearing package behind spec.md §4.1–§4.5 and §7.
package jobservice

import "fmt"

// ValidationError reports a request that fails schema or cross-field
// checks. Reported synchronously as 400/404/406; never enqueued.
type ValidationError struct {
	Code    int // 400, 404, or 406
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(code int, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AdmissionError reports that the Broker or Blackboard was unavailable
// during admission, after MAX_MESSAGE_TRIES attempts. Surfaced as 503.
type AdmissionError struct {
	Message string
}

func (e *AdmissionError) Error() string { return e.Message }

func NewAdmissionError(format string, args ...interface{}) *AdmissionError {
	return &AdmissionError{Message: fmt.Sprintf(format, args...)}
}

// KernelError reports a deterministic failure inside the inner
// statistical procedure. Captured in status.description; the job
// transitions to failed and is never retried.
type KernelError struct {
	Message string
}

func (e *KernelError) Error() string { return e.Message }

func NewKernelError(format string, args ...interface{}) *KernelError {
	return &KernelError{Message: fmt.Sprintf(format, args...)}
}

// InfrastructureError reports a Blackboard/Broker failure during
// processing. The message must not be acknowledged; the Broker redelivers
// up to its limit, after which the stall sweeper takes over.
type InfrastructureError struct {
	Message string
	Cause   error
}

func (e *InfrastructureError) Error() string { return e.Message }
func (e *InfrastructureError) Unwrap() error { return e.Cause }

func NewInfrastructureError(cause error, format string, args ...interface{}) *InfrastructureError {
	return &InfrastructureError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// DataSourceError reports an external fetch failure in the Dataset
// Loader. Retried with bounded backoff before being promoted to failed.
type DataSourceError struct {
	Message string
	Cause   error
}

func (e *DataSourceError) Error() string { return e.Message }
func (e *DataSourceError) Unwrap() error { return e.Cause }

func NewDataSourceError(cause error, format string, args ...interface{}) *DataSourceError {
	return &DataSourceError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// PartialReportError reports that one or more report artifacts failed
// while at least one other succeeded; handled per spec.md §4.4.
type PartialReportError struct {
	FailedKinds []string
	Message     string
}

func (e *PartialReportError) Error() string { return e.Message }

func NewPartialReportError(failedKinds []string, format string, args ...interface{}) *PartialReportError {
	return &PartialReportError{FailedKinds: failedKinds, Message: fmt.Sprintf(format, args...)}
}
