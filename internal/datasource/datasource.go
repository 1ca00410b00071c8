// Package datasource implements the Dataset Loader's external-fetch
// capability (spec.md §4.3): one Loader per ExternalDatasource.LoaderKind,
// dispatched the same way internal/kernel dispatches statistical methods
// by method_name (spec.md Design Note 9's duck-typed dispatch, generalized
// to a second capability).
package datasource

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/methodcatalog"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

// Loader fetches and normalizes one external dataset into the system's
// ExternalData shape.
type Loader interface {
	Fetch(ctx context.Context, resourceID string, params []model.Parameter) (model.ExternalData, error)
}

// ParamValue looks up a named parameter's value, defaulting to def.
func ParamValue(params []model.Parameter, name, def string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return def
}

// Lookup resolves the Loader for sourceID, per the ExternalDatasource
// catalog's LoaderKind field.
func Lookup(sourceID string) (Loader, error) {
	source, ok := methodcatalog.FindSource(sourceID)
	if !ok {
		return nil, jobservice.NewValidationError(404, "unknown data source %q", sourceID)
	}

	switch source.LoaderKind {
	case "example_bundle":
		return &BundleLoader{}, nil
	case "grein", "expression_atlas":
		return NewHTTPLoader(source.LoaderKind), nil
	default:
		return nil, jobservice.NewValidationError(404, "no loader registered for kind %q", source.LoaderKind)
	}
}

// BundleLoader serves datasets shipped with the system, requiring no
// network access.
type BundleLoader struct{}

func (l *BundleLoader) Fetch(ctx context.Context, resourceID string, params []model.Parameter) (model.ExternalData, error) {
	ds, ok := methodcatalog.FindExample(resourceID)
	if !ok {
		return model.ExternalData{}, jobservice.NewValidationError(404, "unknown example dataset %q", resourceID)
	}
	return ds, nil
}

// HTTPLoader fetches a dataset descriptor from an external REST API
// (GREIN, Expression Atlas), converting its JSON response into
// ExternalData. Base URLs are supplied per call via the "base_url"
// parameter since neither upstream API's address is fixed at compile
// time.
type HTTPLoader struct {
	kind   string
	client *resty.Client
}

func NewHTTPLoader(kind string) *HTTPLoader {
	return &HTTPLoader{kind: kind, client: resty.New()}
}

type externalDataResponse struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Group          string              `json:"group"`
	SampleIDs      []string            `json:"sample_ids"`
	SampleMetadata map[string][]string `json:"sample_metadata"`
}

func (l *HTTPLoader) Fetch(ctx context.Context, resourceID string, params []model.Parameter) (model.ExternalData, error) {
	baseURL := ParamValue(params, "base_url", "")
	if baseURL == "" {
		return model.ExternalData{}, jobservice.NewDataSourceError(nil, "%s loader: no base_url parameter supplied", l.kind)
	}

	var body externalDataResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("%s/datasets/%s", baseURL, resourceID))
	if err != nil {
		return model.ExternalData{}, jobservice.NewDataSourceError(err, "%s loader: fetching %s: %v", l.kind, resourceID, err)
	}
	if resp.IsError() {
		return model.ExternalData{}, jobservice.NewDataSourceError(nil, "%s loader: %s returned %s", l.kind, resourceID, resp.Status())
	}

	return model.ExternalData{
		ID:             body.ID,
		Title:          body.Title,
		Description:    body.Description,
		Type:           string(model.DatasetRNASeqCounts),
		Group:          body.Group,
		SampleIDs:      body.SampleIDs,
		SampleMetadata: body.SampleMetadata,
	}, nil
}
