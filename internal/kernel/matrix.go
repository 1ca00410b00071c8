package kernel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

// matrix is the parsed form of a tab-delimited expression matrix: rows =
// genes, cols = samples.
type matrix struct {
	samples []string
	genes   []string
	values  [][]float64
}

func parseMatrix(data string) (*matrix, error) {
	lines := strings.Split(strings.TrimRight(data, "\n"), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("expression matrix must have a header and at least one gene row")
	}

	header := strings.Split(lines[0], "\t")
	if len(header) < 2 {
		return nil, fmt.Errorf("expression matrix header must have a leading tab")
	}
	samples := header[1:]

	m := &matrix{samples: samples}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, fmt.Errorf("row %q has %d columns, want %d", fields[0], len(fields)-1, len(samples))
		}
		row := make([]float64, len(samples))
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("gene %q, sample %q: %v", fields[0], samples[i], err)
			}
			row[i] = v
		}
		m.genes = append(m.genes, fields[0])
		m.values = append(m.values, row)
	}
	return m, nil
}

// groupIndices splits sample column indices into two groups by design.
func groupIndices(samples []string, design *model.Design) (group1, group2 []int) {
	if design == nil {
		return nil, nil
	}
	sampleIndex := make(map[string]int, len(samples))
	for i, s := range samples {
		sampleIndex[s] = i
	}
	for i, label := range design.AnalysisGroup {
		sampleName := ""
		if i < len(design.Samples) {
			sampleName = design.Samples[i]
		}
		col, ok := sampleIndex[sampleName]
		if !ok {
			continue
		}
		switch label {
		case design.Comparison.Group1:
			group1 = append(group1, col)
		case design.Comparison.Group2:
			group2 = append(group2, col)
		}
	}
	return group1, group2
}

func mean(values []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}
