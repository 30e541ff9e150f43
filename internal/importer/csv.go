package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/scope"
)

var utf8BOM = []byte("\xef\xbb\xbf")

type column int

const (
	colDomain column = iota
	colL1
	colL2
	colL3
	colDefinition
)

var requiredColumns = []column{colDomain, colL1, colL2, colL3, colDefinition}

// Header names in the two accepted spellings.
var (
	zhHeaders = map[column]string{colDomain: "业务域", colL1: "一级", colL2: "二级", colL3: "三级", colDefinition: "定义"}
	enHeaders = map[column]string{colDomain: "domain", colL1: "l1", colL2: "l2", colL3: "l3", colDefinition: "definition"}
)

func isCaseHeader(h string) bool {
	return strings.HasPrefix(h, "案例") || strings.HasPrefix(strings.ToLower(h), "case")
}

// Row is one accepted data row of an import file.
type Row struct {
	Line       int
	L1         string
	L2         string
	L3         string
	Definition string
	Cases      []string
}

// Plan is the result of checking a file locally.
type Plan struct {
	Scope   scope.Scope
	Rows    []Row
	Summary api.ImportSummary
	Errors  []api.ImportRowError

	// English is set when any required header uses the English spelling.
	// Such files, mixed ones included, are re-encoded with the canonical
	// headers before upload.
	English bool
}

// OK reports whether the file passed every local rule.
func (p *Plan) OK() bool {
	return len(p.Errors) == 0
}

func strPtr(s string) *string { return &s }

// ParseCSV checks a CSV import file against the rules the backend enforces:
// header on row 1, data records numbered from row 2, blank rows skipped, required
// columns present and non-empty, domain matching the scope, and one
// definition per L1/L2/L3 path.
func ParseCSV(s scope.Scope, data []byte) *Plan {
	plan := &Plan{Scope: s}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		msg := "file is empty"
		if !errors.Is(err, io.EOF) {
			msg = err.Error()
		}
		plan.Errors = append(plan.Errors, api.ImportRowError{Row: 1, Column: "file", Message: msg})
		return plan
	}

	names, index, caseCols, english := resolveHeader(header)
	plan.English = english
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			plan.Errors = append(plan.Errors, api.ImportRowError{
				Row:      1,
				Column:   names[c],
				Message:  "required header missing",
				Expected: strPtr("column present"),
				Actual:   strPtr("missing"),
			})
		}
	}
	if !plan.OK() {
		return plan
	}

	expectedDomain := s.Domain()
	type seen struct {
		definition string
		row        int
	}
	paths := map[[3]string]seen{}
	categories := map[[4]string]struct{}{}

	// Rows count records, not text lines: a quoted cell spanning lines is
	// one row, and empty text lines are no row at all. Records whose cells
	// are all blank still take a number before being skipped.
	line := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			plan.Errors = append(plan.Errors, api.ImportRowError{Row: line, Column: "file", Message: err.Error()})
			break
		}
		if blank(record) {
			continue
		}

		cell := func(c column) string { return field(record, index[c]) }
		domain := cell(colDomain)
		values := map[column]string{
			colDomain: domain, colL1: cell(colL1), colL2: cell(colL2),
			colL3: cell(colL3), colDefinition: cell(colDefinition),
		}

		if plan.English && strings.EqualFold(domain, s.String()) {
			domain = expectedDomain
			values[colDomain] = domain
		}
		if domain != expectedDomain {
			actual := domain
			if actual == "" {
				actual = "(empty)"
			}
			plan.Errors = append(plan.Errors, api.ImportRowError{
				Row: line, Column: names[colDomain], Message: "domain does not match the current scope",
				Expected: strPtr(expectedDomain), Actual: strPtr(actual),
			})
		}
		complete := true
		for _, c := range requiredColumns {
			if values[c] == "" {
				complete = false
				plan.Errors = append(plan.Errors, api.ImportRowError{
					Row: line, Column: names[c], Message: "required field is empty",
					Expected: strPtr("non-empty"), Actual: strPtr("(empty)"),
				})
			}
		}
		if !complete || domain != expectedDomain {
			continue
		}

		key := [3]string{values[colL1], values[colL2], values[colL3]}
		def := values[colDefinition]
		prev, known := paths[key]
		if known && prev.definition != def {
			plan.Errors = append(plan.Errors, api.ImportRowError{
				Row: line, Column: names[colDefinition], Message: "definition differs for the same path",
				Expected: strPtr(fmt.Sprintf("same as row %d", prev.row)), Actual: strPtr(def),
			})
			continue
		}
		if !known {
			paths[key] = seen{definition: def, row: line}
		}

		row := Row{Line: line, L1: key[0], L2: key[1], L3: key[2], Definition: def}
		for _, i := range caseCols {
			if v := field(record, i); v != "" {
				row.Cases = append(row.Cases, v)
			}
		}
		plan.Rows = append(plan.Rows, row)
		categories[[4]string{key[0], key[1], key[2], def}] = struct{}{}
		plan.Summary.Cases += len(row.Cases)
	}

	if !plan.OK() {
		plan.Rows = nil
		plan.Summary = api.ImportSummary{}
		return plan
	}
	plan.Summary.Categories = len(categories)
	return plan
}

// resolveHeader maps required columns to indexes and reports whether any of
// them is spelled in English. names holds the spelling used in error
// reports: the file's own header, or for missing ones Chinese unless every
// matched header is English.
func resolveHeader(header []string) (map[column]string, map[column]int, []int, bool) {
	index := map[column]int{}
	names := map[column]string{}
	var caseCols []int
	zh, en := false, false

	for i, raw := range header {
		h := strings.TrimSpace(raw)
		matched := false
		for _, c := range requiredColumns {
			if _, dup := index[c]; dup {
				continue
			}
			isZH := h == zhHeaders[c]
			if !isZH && !strings.EqualFold(h, enHeaders[c]) {
				continue
			}
			index[c] = i
			names[c] = h
			zh = zh || isZH
			en = en || !isZH
			matched = true
			break
		}
		if !matched && isCaseHeader(h) {
			caseCols = append(caseCols, i)
		}
	}

	for _, c := range requiredColumns {
		if _, ok := names[c]; ok {
			continue
		}
		if zh || !en {
			names[c] = zhHeaders[c]
		} else {
			names[c] = enHeaders[c]
		}
	}
	return names, index, caseCols, en
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteTemplate writes a header-only CSV with the required columns and two
// case columns.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(requiredColumns)+2)
	for _, c := range requiredColumns {
		header = append(header, zhHeaders[c])
	}
	header = append(header, "案例1", "案例2")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Encode writes the accepted rows as a CSV with the canonical headers and
// domain labels, one case column per case of the widest row.
func (p *Plan) Encode() ([]byte, error) {
	width := 0
	for _, r := range p.Rows {
		width = max(width, len(r.Cases))
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	header := make([]string, 0, len(requiredColumns)+width)
	for _, c := range requiredColumns {
		header = append(header, zhHeaders[c])
	}
	for i := 1; i <= width; i++ {
		header = append(header, fmt.Sprintf("案例%d", i))
	}
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	for _, r := range p.Rows {
		record := make([]string, len(header))
		copy(record, []string{p.Scope.Domain(), r.L1, r.L2, r.L3, r.Definition})
		copy(record[len(requiredColumns):], r.Cases)
		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("encode row %d: %w", r.Line, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
