package kernel

// pathwaySets is a small built-in pathway-to-gene-identifier catalog used
// by every kernel in place of a real Reactome release download. Swapping
// this for a live release is the one piece of real inner-kernel work this
// package intentionally leaves out, per spec.md §1 ("the third-party
// pathway-mapping file formats are consumed as opaque tabular inputs").
var pathwaySets = map[string][]string{
	"Cell Cycle":           {"CCNB1", "CCNE1", "CDK1", "CDK2", "CDKN1A", "RB1"},
	"Apoptosis":            {"BAX", "BCL2", "CASP3", "CASP9", "TP53", "FAS"},
	"Immune System":        {"IL6", "IL10", "TNF", "IFNG", "CD4", "CD8A"},
	"Metabolism of RNA":    {"POLR2A", "EIF4E", "XRN1", "DCP2", "EXOSC10"},
	"Signal Transduction":  {"MAPK1", "MAPK3", "AKT1", "PIK3CA", "RAF1", "RAS"},
	"DNA Repair":           {"BRCA1", "BRCA2", "ATM", "ATR", "MLH1", "MSH2"},
}

func pathwayNames() []string {
	names := make([]string, 0, len(pathwaySets))
	for name := range pathwaySets {
		names = append(names, name)
	}
	return names
}
