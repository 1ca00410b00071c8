package kernel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

// cameraPrepared is Camera's Prepared representation: the parsed matrix
// plus the two comparison groups it was built against.
type cameraPrepared struct {
	m      *matrix
	group1 []int
	group2 []int
}

// Camera implements competitive gene-set enrichment via a rank-sum
// statistic over per-gene fold changes (difference of group means, with no
// variance moderation), mirroring the shape of
// the original CAMERA method without its exact statistics.
type Camera struct{}

func NewCamera() Kernel { return &Camera{} }

func (c *Camera) LoadLibraries() error { return nil }

func (c *Camera) Prepare(expression string, design *model.Design, datasetType model.DatasetType, params map[string]string) (Prepared, error) {
	m, err := parseMatrix(expression)
	if err != nil {
		return nil, err
	}
	if design == nil {
		return nil, fmt.Errorf("camera: a design with two comparison groups is required")
	}
	g1, g2 := groupIndices(m.samples, design)
	if len(g1) == 0 || len(g2) == 0 {
		return nil, fmt.Errorf("camera: comparison groups %q/%q matched no samples", design.Comparison.Group1, design.Comparison.Group2)
	}
	return &cameraPrepared{m: m, group1: g1, group2: g2}, nil
}

func (c *Camera) Process(prepared Prepared, progress ProgressFunc) (string, error) {
	p := prepared.(*cameraPrepared)
	progress(0.1, "computing per-gene fold changes")

	geneStat := make(map[string]float64, len(p.m.genes))
	for i, gene := range p.m.genes {
		geneStat[gene] = mean(p.m.values[i], p.group2) - mean(p.m.values[i], p.group1)
	}

	ranked := rankGenes(geneStat)
	progress(0.5, "scoring pathways")

	names := pathwayNames()
	sort.Strings(names)

	pvalues := make([]float64, len(names))
	directions := make([]string, len(names))
	for i, name := range names {
		members := pathwaySets[name]
		z, dir := rankSumZ(members, ranked, geneStat)
		pvalues[i] = normalTailProbability(z)
		directions[i] = dir
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

func (c *Camera) GeneFoldChanges(prepared Prepared) (string, error) {
	p := prepared.(*cameraPrepared)
	var b strings.Builder
	b.WriteString("Gene\tFoldChange\n")
	for i, gene := range p.m.genes {
		fc := mean(p.m.values[i], p.group2) - mean(p.m.values[i], p.group1)
		fmt.Fprintf(&b, "%s\t%.6g\n", gene, fc)
	}
	return b.String(), nil
}

// rankGenes returns gene names ordered by ascending statistic, used to
// compute mean ranks per pathway.
func rankGenes(stat map[string]float64) []string {
	names := make([]string, 0, len(stat))
	for g := range stat {
		names = append(names, g)
	}
	sort.Slice(names, func(i, j int) bool { return stat[names[i]] < stat[names[j]] })
	return names
}

// rankSumZ computes a z-score for whether members of a gene set have a
// higher/lower mean rank than the background, and the direction of the
// deviation.
func rankSumZ(members []string, ranked []string, geneStat map[string]float64) (float64, string) {
	rankOf := make(map[string]int, len(ranked))
	for i, g := range ranked {
		rankOf[g] = i + 1
	}

	var sumRanks float64
	var n int
	for _, gene := range members {
		if r, ok := rankOf[gene]; ok {
			sumRanks += float64(r)
			n++
		}
	}
	if n == 0 {
		return 0, "up"
	}

	N := float64(len(ranked))
	meanRank := sumRanks / float64(n)
	expected := (N + 1) / 2
	variance := (N + 1) * (N - float64(n)) / (12 * float64(n))
	if variance <= 0 {
		variance = 1
	}
	z := (meanRank - expected) / math.Sqrt(variance)

	direction := "up"
	if meanRank < expected {
		direction = "down"
	}
	return z, direction
}
