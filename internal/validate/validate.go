// Package validate implements the admission-time checks described in
// spec.md §4.1 step 2: schema validation (400), method-catalog lookup
// (404), and cross-field consistency checks (406).
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/methodcatalog"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

// AnalysisInput validates and normalizes req, returning a
// *jobservice.ValidationError with the correct HTTP code on any failure.
func AnalysisInput(req model.AnalysisInput) (model.AnalysisInput, error) {
	if strings.TrimSpace(req.MethodName) == "" {
		return req, jobservice.NewValidationError(400, "method_name is required")
	}
	if len(req.Datasets) == 0 {
		return req, jobservice.NewValidationError(400, "at least one dataset is required")
	}

	method, ok := methodcatalog.FindMethod(req.MethodName)
	if !ok {
		return req, jobservice.NewValidationError(404, "unknown method_name %q", req.MethodName)
	}

	seen := make(map[string]bool, len(req.Datasets))
	for i, ds := range req.Datasets {
		if ds.Name == "" {
			return req, jobservice.NewValidationError(400, "dataset[%d]: name is required", i)
		}
		if seen[ds.Name] {
			return req, jobservice.NewValidationError(406, "duplicate dataset name %q", ds.Name)
		}
		seen[ds.Name] = true

		if !validDatasetType(ds.Type) {
			return req, jobservice.NewValidationError(400, "dataset %q: unknown type %q", ds.Name, ds.Type)
		}
		if strings.TrimSpace(ds.Data) == "" {
			return req, jobservice.NewValidationError(400, "dataset %q: data is required", ds.Name)
		}

		ncol, err := matrixColumnCount(ds.Data)
		if err != nil {
			return req, jobservice.NewValidationError(400, "dataset %q: %v", ds.Name, err)
		}

		if ds.Design != nil {
			if err := validateDesign(*ds.Design, ncol); err != nil {
				return req, jobservice.NewValidationError(406, "dataset %q: %v", ds.Name, err)
			}
		}
	}

	normalized, err := coerceParameters(method, req.Parameters)
	if err != nil {
		return req, err
	}
	req.Parameters = normalized

	for i := range req.Datasets {
		normalized, err := coerceParameters(method, req.Datasets[i].Parameters)
		if err != nil {
			return req, err
		}
		req.Datasets[i].Parameters = normalized
	}

	return req, nil
}

func validDatasetType(t model.DatasetType) bool {
	for _, dt := range methodcatalog.DataTypes {
		if dt.Name == string(t) {
			return true
		}
	}
	return false
}

// matrixColumnCount counts the sample columns in a tab-delimited
// expression matrix from its header row (leading tab, then sample
// labels).
func matrixColumnCount(data string) (int, error) {
	lines := strings.SplitN(data, "\n", 2)
	header := lines[0]
	cols := strings.Split(header, "\t")
	if len(cols) < 2 {
		return 0, fmt.Errorf("header row must have a leading tab and at least one sample column")
	}
	// cols[0] is the empty leading cell above the gene-id column.
	return len(cols) - 1, nil
}

// validateDesign checks |samples| == ncol and that group1/group2 appear
// in analysisGroup, per spec.md §8's boundary behaviors.
func validateDesign(d model.Design, ncol int) error {
	if len(d.Samples) != ncol {
		return fmt.Errorf("design.samples has %d entries but data matrix has %d columns", len(d.Samples), ncol)
	}
	if len(d.AnalysisGroup) != len(d.Samples) {
		return fmt.Errorf("design.analysisGroup has %d entries but samples has %d", len(d.AnalysisGroup), len(d.Samples))
	}

	group1Present, group2Present := false, false
	for _, g := range d.AnalysisGroup {
		if g == d.Comparison.Group1 {
			group1Present = true
		}
		if g == d.Comparison.Group2 {
			group2Present = true
		}
	}
	if !group1Present {
		return fmt.Errorf("comparison.group1 %q not present in analysisGroup", d.Comparison.Group1)
	}
	if !group2Present {
		return fmt.Errorf("comparison.group2 %q not present in analysisGroup", d.Comparison.Group2)
	}
	for name, values := range d.Covariates {
		if len(values) != len(d.Samples) {
			return fmt.Errorf("covariate %q has %d entries but samples has %d", name, len(values), len(d.Samples))
		}
	}
	return nil
}

// coerceParameters checks each submitted parameter against method's
// declared catalog: unknown names are dropped silently, with nothing
// logged (the caller never sees an error for those); known names with an
// enum fail closed if
// the value is not listed; int/float values fail closed if they do not
// parse.
func coerceParameters(method model.Method, params []model.Parameter) ([]model.Parameter, error) {
	declared := make(map[string]model.MethodParameter, len(method.Parameters))
	for _, p := range method.Parameters {
		declared[p.Name] = p
	}

	out := make([]model.Parameter, 0, len(params))
	for _, p := range params {
		if isCommonParameter(p.Name) {
			// Common-scoped parameters steer system behavior (report/e-mail
			// requests), not the method's own statistics, so they pass
			// through untouched regardless of which method was chosen.
			out = append(out, p)
			continue
		}

		decl, ok := declared[p.Name]
		if !ok {
			// Unknown parameters are ignored; a real deployment would log
			// a warning here via the caller's logger.
			continue
		}

		if len(decl.Values) > 0 {
			valid := false
			for _, v := range decl.Values {
				if v == p.Value {
					valid = true
					break
				}
			}
			if !valid {
				return nil, jobservice.NewValidationError(406, "parameter %q: %q is not one of %v", p.Name, p.Value, decl.Values)
			}
		}

		switch decl.Type {
		case model.ParamInt:
			if _, err := strconv.Atoi(p.Value); err != nil {
				return nil, jobservice.NewValidationError(406, "parameter %q: %q is not a valid int", p.Name, p.Value)
			}
		case model.ParamFloat:
			if _, err := strconv.ParseFloat(p.Value, 64); err != nil {
				return nil, jobservice.NewValidationError(406, "parameter %q: %q is not a valid float", p.Name, p.Value)
			}
		}

		out = append(out, p)
	}
	return out, nil
}

// isCommonParameter reports whether name is one of the fixed
// scope=common parameters every method accepts, per spec.md §4.2.
func isCommonParameter(name string) bool {
	switch name {
	case "want_report", "want_email", "recipient":
		return true
	}
	return false
}
