package kernel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

func TestSsGSEA_Prepare_NoDesignRequired(t *testing.T) {
	k := &SsGSEA{}
	_, err := k.Prepare("\tS1\tS2\nCCNB1\t1.0\t2.0\n", nil, model.DatasetRNASeqCounts, nil)
	require.NoError(t, err)
}

func TestSsGSEA_Process_ProducesPathwayTable(t *testing.T) {
	k := &SsGSEA{}
	expr := "\tS1\tS2\tS3\nCCNB1\t1.0\t5.0\t3.0\nBAX\t2.0\t1.0\t4.0\n"
	prepared, err := k.Prepare(expr, nil, model.DatasetRNASeqCounts, nil)
	require.NoError(t, err)

	result, err := k.Process(prepared, func(fraction float64, message string) {})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	require.Equal(t, "Pathway\tDirection\tFDR\tPValue", lines[0])
	require.Greater(t, len(lines), 1)
}

func TestSsGSEA_GeneFoldChanges_AlwaysEmpty(t *testing.T) {
	k := &SsGSEA{}
	fc, err := k.GeneFoldChanges(nil)
	require.NoError(t, err)
	require.Empty(t, fc)
}
