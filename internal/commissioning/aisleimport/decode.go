package aisleimport

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// MaxImportSize is the largest aisle file accepted (10 MB).
const MaxImportSize = 10 * 1024 * 1024

// importIDBytes is the number of UUID bytes kept in an import ID.
const importIDBytes = 8

// columns maps each Row field to the header names that select it.
// Matching is case-insensitive and ignores surrounding blanks.
var columns = []struct {
	names []string
	set   func(*Row, string)
}{
	{[]string{"bintype"}, func(r *Row, v string) { r.BinType = v }},
	{[]string{"nominaldomainid", "domainid"}, func(r *Row, v string) { r.NominalDomainID = v }},
	{[]string{"lengthcm"}, func(r *Row, v string) { r.LengthCm = v }},
	{[]string{"slotsintier"}, func(r *Row, v string) { r.SlotsInTier = v }},
	{[]string{"ledcountintier"}, func(r *Row, v string) { r.LedCountInTier = v }},
	{[]string{"tierfloorcm"}, func(r *Row, v string) { r.TierFloorCm = v }},
	{[]string{"controllerled"}, func(r *Row, v string) { r.ControllerLED = v }},
	{[]string{"anchorx"}, func(r *Row, v string) { r.AnchorX = v }},
	{[]string{"anchory"}, func(r *Row, v string) { r.AnchorY = v }},
	{[]string{"orientxory", "orientation"}, func(r *Row, v string) { r.OrientXorY = v }},
	{[]string{"depthcm"}, func(r *Row, v string) { r.DepthCm = v }},
}

// DecodeCSV reads an aisle definition file. The first record is the header
// and selects columns by name; unknown columns are ignored. Rows may be
// shorter than the header, in which case the missing fields are empty.
// Blank records are skipped.
func DecodeCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if findColumn(index, "bintype") < 0 {
		return nil, ErrMissingHeader
	}

	cols := make([]int, len(columns))
	for i, c := range columns {
		cols[i] = findColumn(index, c.names...)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		if isBlank(record) {
			continue
		}

		line, _ := cr.FieldPos(0)
		row := Row{Line: line}
		for i, c := range columns {
			if col := cols[i]; col >= 0 && col < len(record) {
				c.set(&row, strings.TrimSpace(record[col]))
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func findColumn(index map[string]int, names ...string) int {
	for _, name := range names {
		if idx, ok := index[name]; ok {
			return idx
		}
	}
	return -1
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func generateImportID() string {
	id := uuid.New()
	return "imp_" + hex.EncodeToString(id[:importIDBytes])
}
