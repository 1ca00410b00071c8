// Package methodcatalog serves the statically compiled Method, DataType,
// and ExternalDatasource catalogs described in spec.md §3 and §6
// (/methods, /types, /data/sources), and is consulted by internal/validate
// at admission time.
package methodcatalog

import "github.com/reactome/gsa-orchestrator/internal/model"

// Methods lists the kernels available through internal/kernel's registry.
var Methods = []model.Method{
	{
		Name:        "Camera",
		Description: "Competitive gene-set enrichment via a rank-sum statistic over per-gene fold changes (difference of group means).",
		Parameters: []model.MethodParameter{
			{Name: "min_set_size", Type: model.ParamInt, Scope: model.ScopeAnalysis, Default: "10"},
			{Name: "fdr_threshold", Type: model.ParamFloat, Scope: model.ScopeAnalysis, Default: "0.05"},
			{Name: "norm_function", Type: model.ParamString, Scope: model.ScopeDataset, Default: "TMM", Values: []string{"TMM", "none"}},
		},
	},
	{
		Name:        "PADOG",
		Description: "Pathway analysis with down-weighting of genes shared across many gene sets.",
		Parameters: []model.MethodParameter{
			{Name: "iterations", Type: model.ParamInt, Scope: model.ScopeAnalysis, Default: "1000"},
			{Name: "norm_function", Type: model.ParamString, Scope: model.ScopeDataset, Default: "TMM", Values: []string{"TMM", "none"}},
		},
	},
	{
		Name:        "ssGSEA",
		Description: "Single-sample gene-set enrichment scoring, requiring no comparison groups.",
		Parameters: []model.MethodParameter{
			{Name: "min_set_size", Type: model.ParamInt, Scope: model.ScopeAnalysis, Default: "10"},
		},
	},
}

// DataTypes lists the accepted inline Dataset.Type values.
var DataTypes = []model.DataType{
	{Name: string(model.DatasetRNASeqCounts), Description: "Raw RNA-seq read counts, rows = genes, cols = samples."},
	{Name: string(model.DatasetRNASeqNorm), Description: "Normalized RNA-seq expression values."},
	{Name: string(model.DatasetProteomicsInt), Description: "Proteomics intensity values."},
	{Name: string(model.DatasetProteomicsSC), Description: "Single-cell proteomics values."},
	{Name: string(model.DatasetMicroarrayNorm), Description: "Normalized microarray expression values."},
}

// Sources lists the external data sources the Dataset Loader can fetch
// from, served by /data/sources.
var Sources = []model.ExternalDatasource{
	{ID: "grein", Name: "GREIN", Description: "GEO RNA-seq Experiments Interactive Navigator.", LoaderKind: "grein"},
	{ID: "expression_atlas", Name: "Expression Atlas", Description: "EBI Expression Atlas curated datasets.", LoaderKind: "expression_atlas"},
	{ID: "example_bundle", Name: "Example datasets", Description: "Bundled example datasets shipped with the system.", LoaderKind: "example_bundle"},
}

// Examples lists the bundled example datasets served by /data/examples and
// indexed by internal/searchindex at boot.
var Examples = []model.ExternalData{
	{
		ID:          "EXAMPLE_MEL_RNA",
		Title:       "Melanoma cell line RNA-seq",
		Description: "Paired RNA-seq counts from melanoma cell lines before and after treatment.",
		Type:        string(model.DatasetRNASeqCounts),
		Group:       "oncology",
		SampleIDs:   []string{"S1", "S2", "S3", "S4"},
		SampleMetadata: map[string][]string{
			"condition": {"untreated", "untreated", "treated", "treated"},
		},
	},
	{
		ID:          "EXAMPLE_IMMUNE_PROT",
		Title:       "Immune cell proteomics panel",
		Description: "Intensity proteomics profiling of sorted immune cell populations.",
		Type:        string(model.DatasetProteomicsInt),
		Group:       "immunology",
		SampleIDs:   []string{"P1", "P2", "P3", "P4"},
		SampleMetadata: map[string][]string{
			"celltype": {"t_cell", "t_cell", "b_cell", "b_cell"},
		},
	},
}

// FindExample looks up a bundled example dataset by id.
func FindExample(id string) (model.ExternalData, bool) {
	for _, e := range Examples {
		if e.ID == id {
			return e, true
		}
	}
	return model.ExternalData{}, false
}

// FindMethod looks up a method by name (case-sensitive, matching the
// catalog as advertised) and reports whether it exists.
func FindMethod(name string) (model.Method, bool) {
	for _, m := range Methods {
		if m.Name == name {
			return m, true
		}
	}
	return model.Method{}, false
}

// FindSource looks up an external data source by id.
func FindSource(id string) (model.ExternalDatasource, bool) {
	for _, s := range Sources {
		if s.ID == id {
			return s, true
		}
	}
	return model.ExternalDatasource{}, false
}
