package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

func validDesign() model.Design {
	d := model.Design{
		Samples:       []string{"S1", "S2", "S3", "S4"},
		AnalysisGroup: []string{"untreated", "untreated", "treated", "treated"},
	}
	d.Comparison.Group1 = "untreated"
	d.Comparison.Group2 = "treated"
	return d
}

func validInput() model.AnalysisInput {
	d := validDesign()
	return model.AnalysisInput{
		MethodName: "Camera",
		Datasets: []model.Dataset{
			{
				Name:   "ds1",
				Type:   model.DatasetType("rnaseq_counts"),
				Data:   "\tS1\tS2\tS3\tS4\ngene1\t1\t2\t3\t4\n",
				Design: &d,
			},
		},
	}
}

func TestAnalysisInput_RejectsMissingMethodName(t *testing.T) {
	req := validInput()
	req.MethodName = ""
	_, err := AnalysisInput(req)
	require.Error(t, err)
	var verr *jobservice.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 400, verr.Code)
}

func TestAnalysisInput_RejectsNoDatasets(t *testing.T) {
	req := validInput()
	req.Datasets = nil
	_, err := AnalysisInput(req)
	require.Error(t, err)
}

func TestAnalysisInput_RejectsUnknownMethod(t *testing.T) {
	req := validInput()
	req.MethodName = "NotAMethod"
	_, err := AnalysisInput(req)
	require.Error(t, err)
	var verr *jobservice.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 404, verr.Code)
}

func TestAnalysisInput_RejectsDuplicateDatasetNames(t *testing.T) {
	req := validInput()
	req.Datasets = append(req.Datasets, req.Datasets[0])
	_, err := AnalysisInput(req)
	require.Error(t, err)
	var verr *jobservice.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 406, verr.Code)
}

func TestAnalysisInput_RejectsUnknownDatasetType(t *testing.T) {
	req := validInput()
	req.Datasets[0].Type = model.DatasetType("not_a_type")
	_, err := AnalysisInput(req)
	require.Error(t, err)
}

func TestAnalysisInput_RejectsDesignSampleCountMismatch(t *testing.T) {
	req := validInput()
	req.Datasets[0].Design.Samples = []string{"S1", "S2"}
	_, err := AnalysisInput(req)
	require.Error(t, err)
	var verr *jobservice.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 406, verr.Code)
}

func TestAnalysisInput_RejectsComparisonGroupNotPresent(t *testing.T) {
	req := validInput()
	req.Datasets[0].Design.Comparison.Group2 = "nonexistent_group"
	_, err := AnalysisInput(req)
	require.Error(t, err)
}

func TestAnalysisInput_AcceptsValidRequest(t *testing.T) {
	req := validInput()
	got, err := AnalysisInput(req)
	require.NoError(t, err)
	require.Equal(t, "Camera", got.MethodName)
}

func TestAnalysisInput_CommonParametersBypassMethodDeclaration(t *testing.T) {
	req := validInput()
	req.Parameters = []model.Parameter{
		{Name: "want_report", Value: "true"},
		{Name: "recipient", Value: "a@example.org"},
	}
	got, err := AnalysisInput(req)
	require.NoError(t, err)
	require.Len(t, got.Parameters, 2)
}

func TestAnalysisInput_UnknownParameterIsDroppedSilently(t *testing.T) {
	req := validInput()
	req.Parameters = []model.Parameter{{Name: "not_a_real_param", Value: "x"}}
	got, err := AnalysisInput(req)
	require.NoError(t, err)
	require.Empty(t, got.Parameters)
}

func TestAnalysisInput_EnumParameterRejectsInvalidValue(t *testing.T) {
	req := validInput()
	req.Parameters = []model.Parameter{{Name: "norm_function", Value: "bogus"}}
	_, err := AnalysisInput(req)
	require.Error(t, err)
}

func TestAnalysisInput_IntParameterRejectsNonInt(t *testing.T) {
	req := validInput()
	req.Parameters = []model.Parameter{{Name: "min_set_size", Value: "not-an-int"}}
	_, err := AnalysisInput(req)
	require.Error(t, err)
}

func TestAnalysisInput_FloatParameterAcceptsValidFloat(t *testing.T) {
	req := validInput()
	req.Parameters = []model.Parameter{{Name: "fdr_threshold", Value: "0.1"}}
	got, err := AnalysisInput(req)
	require.NoError(t, err)
	require.Len(t, got.Parameters, 1)
}

func TestAnalysisInput_CovariateLengthMismatchIsRejected(t *testing.T) {
	req := validInput()
	req.Datasets[0].Design.Covariates = map[string][]string{"batch": {"1", "2"}}
	_, err := AnalysisInput(req)
	require.Error(t, err)
}
