package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

func TestParseMatrix_ParsesHeaderAndRows(t *testing.T) {
	data := "\tS1\tS2\tS3\nGENE1\t1.0\t2.0\t3.0\nGENE2\t4.0\t5.0\t6.0\n"
	m, err := parseMatrix(data)
	require.NoError(t, err)
	require.Equal(t, []string{"S1", "S2", "S3"}, m.samples)
	require.Equal(t, []string{"GENE1", "GENE2"}, m.genes)
	require.Equal(t, []float64{1.0, 2.0, 3.0}, m.values[0])
}

func TestParseMatrix_RejectsTooFewLines(t *testing.T) {
	_, err := parseMatrix("\tS1\tS2\n")
	require.Error(t, err)
}

func TestParseMatrix_RejectsMissingLeadingTab(t *testing.T) {
	_, err := parseMatrix("S1\nGENE1\t1.0\n")
	require.Error(t, err)
}

func TestParseMatrix_RejectsRowWithWrongColumnCount(t *testing.T) {
	_, err := parseMatrix("\tS1\tS2\nGENE1\t1.0\n")
	require.Error(t, err)
}

func TestParseMatrix_RejectsNonNumericValue(t *testing.T) {
	_, err := parseMatrix("\tS1\tS2\nGENE1\tnot-a-number\t2.0\n")
	require.Error(t, err)
}

func TestGroupIndices_SplitsSamplesByComparisonGroup(t *testing.T) {
	design := &model.Design{
		Samples:       []string{"S1", "S2", "S3", "S4"},
		AnalysisGroup: []string{"untreated", "untreated", "treated", "treated"},
	}
	design.Comparison.Group1 = "untreated"
	design.Comparison.Group2 = "treated"

	g1, g2 := groupIndices([]string{"S1", "S2", "S3", "S4"}, design)
	require.Equal(t, []int{0, 1}, g1)
	require.Equal(t, []int{2, 3}, g2)
}

func TestGroupIndices_NilDesignReturnsNil(t *testing.T) {
	g1, g2 := groupIndices([]string{"S1"}, nil)
	require.Nil(t, g1)
	require.Nil(t, g2)
}

func TestMean_EmptyIndexIsZero(t *testing.T) {
	require.Equal(t, 0.0, mean([]float64{1, 2, 3}, nil))
}

func TestMean_ComputesAverageOverIndices(t *testing.T) {
	require.Equal(t, 2.0, mean([]float64{1, 2, 3, 4}, []int{0, 1, 2}))
}
