package report

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

func sampleResult() model.AnalysisResult {
	return model.AnalysisResult{
		Release: "90",
		Results: map[string]string{
			"ds1": "Pathway\tDirection\tFDR\tPValue\nCell Cycle\tup\t0.01\t0.001\n",
		},
	}
}

func TestBuildXLSX_ProducesValidZipWithExpectedParts(t *testing.T) {
	data, err := BuildXLSX(sampleResult())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	require.True(t, names["[Content_Types].xml"])
	require.True(t, names["xl/workbook.xml"])
	require.True(t, names["xl/worksheets/sheet1.xml"])
}

func TestBuildXLSX_SheetContainsEscapedPathwayName(t *testing.T) {
	result := sampleResult()
	result.Results["ds1"] = "Pathway\tDirection\nA & B\tup\n"
	data, err := BuildXLSX(result)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != "xl/worksheets/sheet1.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		require.Contains(t, buf.String(), "A &amp; B")
	}
}

func TestColumnLetter_FirstTwentySixAreSingleLetters(t *testing.T) {
	require.Equal(t, "A", columnLetter(0))
	require.Equal(t, "Z", columnLetter(25))
}

func TestBuildPDF_ProducesWellFormedObjectStructure(t *testing.T) {
	data, err := BuildPDF(sampleResult())
	require.NoError(t, err)

	s := string(data)
	require.Contains(t, s, "%PDF-1.4")
	require.Contains(t, s, "/Type /Catalog")
	require.Contains(t, s, "xref")
	require.Contains(t, s, "trailer")
	require.Contains(t, s, "Reactome release 90")
}

func TestEscapePDFString_EscapesParensAndBackslash(t *testing.T) {
	require.Equal(t, `a \(b\) \\c`, escapePDFString(`a (b) \c`))
}
