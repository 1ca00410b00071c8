package kernel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

type padogPrepared struct {
	m      *matrix
	group1 []int
	group2 []int
}

// PADOG is a simplified variant of the original down-weighting pathway
// method: genes that appear in more pathway sets contribute
// proportionally less to each set's score.
type PADOG struct{}

func NewPADOG() Kernel { return &PADOG{} }

func (k *PADOG) LoadLibraries() error { return nil }

func (k *PADOG) Prepare(expression string, design *model.Design, datasetType model.DatasetType, params map[string]string) (Prepared, error) {
	m, err := parseMatrix(expression)
	if err != nil {
		return nil, err
	}
	if design == nil {
		return nil, fmt.Errorf("padog: a design with two comparison groups is required")
	}
	g1, g2 := groupIndices(m.samples, design)
	if len(g1) == 0 || len(g2) == 0 {
		return nil, fmt.Errorf("padog: comparison groups %q/%q matched no samples", design.Comparison.Group1, design.Comparison.Group2)
	}
	return &padogPrepared{m: m, group1: g1, group2: g2}, nil
}

func geneWeights() map[string]float64 {
	counts := make(map[string]int)
	for _, members := range pathwaySets {
		for _, g := range members {
			counts[g]++
		}
	}
	weights := make(map[string]float64, len(counts))
	for g, c := range counts {
		weights[g] = 1.0 / float64(c)
	}
	return weights
}

func (k *PADOG) Process(prepared Prepared, progress ProgressFunc) (string, error) {
	p := prepared.(*padogPrepared)
	progress(0.1, "computing down-weighted gene statistics")

	weights := geneWeights()
	geneStat := make(map[string]float64, len(p.m.genes))
	for i, gene := range p.m.genes {
		fc := mean(p.m.values[i], p.group2) - mean(p.m.values[i], p.group1)
		w := weights[gene]
		if w == 0 {
			w = 1
		}
		geneStat[gene] = fc * w
	}

	progress(0.5, "scoring pathways")
	names := pathwayNames()
	sort.Strings(names)

	pvalues := make([]float64, len(names))
	directions := make([]string, len(names))
	for i, name := range names {
		var score float64
		for _, g := range pathwaySets[name] {
			score += geneStat[g]
		}
		z := score / float64(len(pathwaySets[name])+1)
		pvalues[i] = normalTailProbability(z)
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

func (k *PADOG) GeneFoldChanges(prepared Prepared) (string, error) {
	p := prepared.(*padogPrepared)
	var b strings.Builder
	b.WriteString("Gene\tFoldChange\n")
	for i, gene := range p.m.genes {
		fc := mean(p.m.values[i], p.group2) - mean(p.m.values[i], p.group1)
		fmt.Fprintf(&b, "%s\t%.6g\n", gene, fc)
	}
	return b.String(), nil
}
