// Package kernel defines the inner statistical-kernel capability from
// spec.md §4.2 and Design Note 9 ("Duck-typed kernel dispatch"), and a
// registry keyed by method_name. The kernels here are deliberately simple
// replaceable procedures; their mathematics is explicitly out of scope
// per spec.md §1 — what matters is the interface and dispatch mechanism.
package kernel

import (
	"fmt"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

// ProgressFunc reports fractional completion and a human-readable
// message. Implementations should call it sparingly; rate-limiting is the
// caller's (worker's) responsibility, not the kernel's.
type ProgressFunc func(fraction float64, message string)

// Prepared is the kernel-internal representation of one dataset after
// LoadLibraries/Prepare, opaque to the worker.
type Prepared interface{}

// Kernel is the capability every method_name binds to: load reference
// libraries once, prepare a dataset, process it into a pathway table, and
// optionally compute per-gene fold changes.
type Kernel interface {
	// LoadLibraries performs any one-time reference-data load the kernel
	// needs (pathway definitions, gene identifier maps).
	LoadLibraries() error

	// Prepare parses the tab-delimited expression matrix and associated
	// design into the kernel's internal representation.
	Prepare(expression string, design *model.Design, datasetType model.DatasetType, params map[string]string) (Prepared, error)

	// Process runs the enrichment procedure and returns a tab-delimited
	// pathway result matrix with columns Pathway, Direction, FDR, PValue.
	Process(prepared Prepared, progress ProgressFunc) (string, error)

	// GeneFoldChanges optionally computes per-gene fold changes; returns
	// ("", nil) if the kernel has none to offer.
	GeneFoldChanges(prepared Prepared) (string, error)
}

var registry = map[string]func() Kernel{
	"Camera": NewCamera,
	"PADOG":  NewPADOG,
	"ssGSEA": NewSsGSEA,
}

// Lookup returns the kernel bound to methodName, or an error if no kernel
// is registered under that name.
func Lookup(methodName string) (Kernel, error) {
	factory, ok := registry[methodName]
	if !ok {
		return nil, fmt.Errorf("kernel: no kernel registered for method %q", methodName)
	}
	return factory(), nil
}
