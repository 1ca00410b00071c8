// Package report builds the XLSX and PDF artifacts the Report Generator
// worker attaches to a completed analysis job (spec.md §4.4). No
// spreadsheet or PDF library appears anywhere in the retrieval pack, so
// both renderers are hand-rolled against the standard library
// (archive/zip + hand-written XML strings for XLSX, raw PDF object syntax
// for PDF) —
// see DESIGN.md for that justification.
package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/><Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/></Types>`

	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/></Relationships>`

	workbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets><sheet name="Pathways" sheetId="1" r:id="rId1"/></sheets></workbook>`

	workbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/></Relationships>`
)

// BuildXLSX renders result as a single-sheet workbook, one row per
// tab-delimited line of each dataset's entry in result.Results (pathway
// name/direction/fdr/pvalue, per the kernel Process contract), prefixed
// with a row naming which dataset the following rows belong to.
func BuildXLSX(result model.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml":        contentTypesXML,
		"_rels/.rels":                rootRelsXML,
		"xl/workbook.xml":            workbookXML,
		"xl/_rels/workbook.xml.rels": workbookRelsXML,
		"xl/worksheets/sheet1.xml":   sheetXML(flattenResults(result.Results)),
	}

	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing xlsx archive: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenResults orders result's per-dataset tables deterministically and
// prefixes each with a dataset-name row, since a workbook sheet has no
// native notion of AnalysisResult's map keying.
func flattenResults(results map[string]string) string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString("Dataset\t" + name + "\n")
		sb.WriteString(results[name])
	}
	return sb.String()
}

func sheetXML(tabSeparated string) string {
	var rows strings.Builder
	for i, line := range strings.Split(strings.TrimRight(tabSeparated, "\n"), "\n") {
		if line == "" {
			continue
		}
		rows.WriteString(fmt.Sprintf(`<row r="%d">`, i+1))
		for j, cell := range strings.Split(line, "\t") {
			ref := fmt.Sprintf("%s%d", columnLetter(j), i+1)
			rows.WriteString(fmt.Sprintf(`<c r="%s" t="inlineStr"><is><t>%s</t></is></c>`, ref, escapeXML(cell)))
		}
		rows.WriteString("</row>")
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>%s</sheetData></worksheet>`, rows.String())
}

func columnLetter(index int) string {
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if index < 26 {
		return string(letters[index])
	}
	return string(letters[index/26-1]) + string(letters[index%26])
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
