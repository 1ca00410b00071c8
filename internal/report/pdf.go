package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

// BuildPDF renders a minimal single-page summary of result: the release,
// the pathway table, and the gene fold-change table, each line as its own
// text-showing operator. This is not a typesetting engine — it is enough
// structure for a PDF viewer to render a readable page, written directly
// against the object/xref syntax rather than a layout library.
func BuildPDF(result model.AnalysisResult) ([]byte, error) {
	lines := []string{fmt.Sprintf("Reactome release %s", result.Release)}
	names := make([]string, 0, len(result.Results))
	for name := range result.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, "Dataset "+name)
		lines = append(lines, strings.Split(strings.TrimRight(result.Results[name], "\n"), "\n")...)
	}
	fcNames := make([]string, 0, len(result.FoldChanges))
	for name := range result.FoldChanges {
		fcNames = append(fcNames, name)
	}
	sort.Strings(fcNames)
	for _, name := range fcNames {
		lines = append(lines, "Fold changes "+name)
		lines = append(lines, strings.Split(strings.TrimRight(result.FoldChanges[name], "\n"), "\n")...)
	}

	content := buildContentStream(lines)

	var buf bytes.Buffer
	offsets := make([]int, 0, 5)

	buf.WriteString("%PDF-1.4\n")

	offsets = append(offsets, buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets = append(offsets, buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets = append(offsets, buf.Len())
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 5 0 R >> >> /MediaBox [0 0 612 792] /Contents 4 0 R >>\nendobj\n")

	offsets = append(offsets, buf.Len())
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content)

	offsets = append(offsets, buf.Len())
	buf.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xrefStart)

	return buf.Bytes(), nil
}

func buildContentStream(lines []string) string {
	var sb strings.Builder
	sb.WriteString("BT /F1 10 Tf 40 750 Td\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("0 -14 Td\n")
		}
		fmt.Fprintf(&sb, "(%s) Tj\n", escapePDFString(line))
	}
	sb.WriteString("ET")
	return sb.String()
}

func escapePDFString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	s = strings.ReplaceAll(s, ")", `\)`)
	return s
}
