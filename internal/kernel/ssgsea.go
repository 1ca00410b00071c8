package kernel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

type ssGSEAPrepared struct {
	m *matrix
}

// SsGSEA scores each pathway per sample without requiring comparison
// groups, per spec.md §9's note that design is optional for some
// kernels.
type SsGSEA struct{}

func NewSsGSEA() Kernel { return &SsGSEA{} }

func (k *SsGSEA) LoadLibraries() error { return nil }

func (k *SsGSEA) Prepare(expression string, design *model.Design, datasetType model.DatasetType, params map[string]string) (Prepared, error) {
	m, err := parseMatrix(expression)
	if err != nil {
		return nil, err
	}
	return &ssGSEAPrepared{m: m}, nil
}

func (k *SsGSEA) Process(prepared Prepared, progress ProgressFunc) (string, error) {
	p := prepared.(*ssGSEAPrepared)
	progress(0.2, "ranking genes per sample")

	rankSum := make(map[string]float64, len(p.m.genes))
	geneIndex := make(map[string]int, len(p.m.genes))
	for i, g := range p.m.genes {
		geneIndex[g] = i
	}

	for sampleIdx := range p.m.samples {
		order := make([]int, len(p.m.genes))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return p.m.values[order[a]][sampleIdx] < p.m.values[order[b]][sampleIdx]
		})
		ranks := make([]float64, len(order))
		for rank, geneRow := range order {
			ranks[geneRow] = float64(rank + 1)
		}
		for i, g := range p.m.genes {
			rankSum[g] += ranks[i]
		}
	}

	progress(0.6, "scoring pathways")
	names := pathwayNames()
	sort.Strings(names)

	n := float64(len(p.m.samples))
	scores := make([]float64, len(names))
	for i, name := range names {
		var total float64
		var count int
		for _, g := range pathwaySets[name] {
			if idx, ok := geneIndex[g]; ok {
				_ = idx
				total += rankSum[g] / n
				count++
			}
		}
		if count > 0 {
			scores[i] = total / float64(count)
		}
	}

	pvalues := make([]float64, len(names))
	directions := make([]string, len(names))
	meanGeneRank := float64(len(p.m.genes)+1) / 2
	for i := range names {
		z := scores[i] - meanGeneRank
		pvalues[i] = normalTailProbability(z / (meanGeneRank + 1))
		directions[i] = "up"
		if z < 0 {
			directions[i] = "down"
		}
	}
	fdr := benjaminiHochberg(pvalues)
	progress(0.9, "assembling pathway table")

	var b strings.Builder
	b.WriteString("Pathway\tDirection\tFDR\tPValue\n")
	for i, name := range names {
		fmt.Fprintf(&b, "%s\t%s\t%.6g\t%.6g\n", name, directions[i], fdr[i], pvalues[i])
	}
	return b.String(), nil
}

// GeneFoldChanges returns no fold changes: ssGSEA scores samples
// individually and has no comparison-group fold change to offer.
func (k *SsGSEA) GeneFoldChanges(prepared Prepared) (string, error) {
	return "", nil
}
