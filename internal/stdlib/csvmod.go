package stdlib

import (
	"encoding/csv"
	"strings"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type csvModule struct{}

func (*csvModule) Name() string { return "csv" }

func (m *csvModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "parse":
		records, err := readAll(argString(args, 0))
		if err != nil {
			return nil, err
		}
		rows := make([]*runtime.Value, len(records))
		for i, rec := range records {
			cells := make([]*runtime.Value, len(rec))
			for j, c := range rec {
				cells[j] = runtime.String(c)
			}
			rows[i] = runtime.List(cells)
		}
		return runtime.List(rows), nil
	case "parse_dicts":
		// First record is the header row; remaining rows become dicts
		// keyed by header name.
		records, err := readAll(argString(args, 0))
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return runtime.List(nil), nil
		}
		header := records[0]
		rows := make([]*runtime.Value, 0, len(records)-1)
		for _, rec := range records[1:] {
			d := runtime.NewOrderedDict()
			for j, key := range header {
				if j < len(rec) {
					d.Set(key, runtime.String(rec[j]))
				}
			}
			rows = append(rows, runtime.Dict(d))
		}
		return runtime.List(rows), nil
	case "stringify":
		if len(args) == 0 || args[0].Kind != runtime.KList {
			return nil, diag.New(diag.TypeError, "csv.stringify expects a list of rows")
		}
		var b strings.Builder
		w := csv.NewWriter(&b)
		for _, row := range args[0].List {
			if row.Kind != runtime.KList {
				return nil, diag.New(diag.TypeError, "csv.stringify: row %s is not a list", row.ToString())
			}
			rec := make([]string, len(row.List))
			for j, c := range row.List {
				rec[j] = c.ToString()
			}
			if err := w.Write(rec); err != nil {
				return nil, diag.New(diag.RuntimeError, "csv.stringify: %v", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, diag.New(diag.RuntimeError, "csv.stringify: %v", err)
		}
		return runtime.String(b.String()), nil
	default:
		return nil, errUnknown("csv", fn)
	}
}

func readAll(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, diag.New(diag.RuntimeError, "csv.parse: %v", err)
	}
	return records, nil
}
