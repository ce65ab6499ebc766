package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/eurotab"
	"github.com/nao1215/eurotab/domain/model"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// cell renders a value for the table output; missing values show as "-".
func cell(v model.Value) string {
	if v.Missing {
		return "-"
	}
	return v.String()
}

func writeTable(w io.Writer, rs *model.ResultSet) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ENTITY\t"+strings.Join(rs.Fields, "\t"))
	for _, row := range rs.Rows {
		cells := make([]string, 0, len(rs.Fields)+1)
		cells = append(cells, row.Entity)
		for _, f := range rs.Fields {
			cells = append(cells, cell(row.Value(f)))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

type jsonRow struct {
	Entity string              `json:"entity"`
	Line   int                 `json:"line"`
	Values map[string]*float64 `json:"values"`
}

type jsonResult struct {
	Name        string             `json:"name"`
	Source      string             `json:"source"`
	Fields      []string           `json:"fields"`
	Rows        []jsonRow          `json:"rows"`
	Diagnostics []model.Diagnostic `json:"diagnostics,omitempty"`
	Unresolved  []string           `json:"unresolved,omitempty"`
	Fallback    string             `json:"fallback,omitempty"`
}

// writeJSON writes rs as one indented document. Missing values are null.
func writeJSON(w io.Writer, rs *model.ResultSet) error {
	doc := jsonResult{
		Name:        rs.Name,
		Source:      rs.Source,
		Fields:      rs.Fields,
		Rows:        make([]jsonRow, 0, len(rs.Rows)),
		Diagnostics: rs.Diagnostics,
		Unresolved:  rs.Unresolved,
	}
	if rs.IsFallback() {
		doc.Fallback = rs.FallbackCause.Error()
	}
	for _, row := range rs.Rows {
		values := make(map[string]*float64, len(rs.Fields))
		for _, f := range rs.Fields {
			v := row.Value(f)
			if v.Missing {
				values[f] = nil
				continue
			}
			values[f] = &v.Float
		}
		doc.Rows = append(doc.Rows, jsonRow{Entity: row.Entity, Line: row.Line, Values: values})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeComparisons(w io.Writer, entity, reference string, comparisons []eurotab.Comparison) error {
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "FIELD\t%s\t%s\tDELTA\tDELTA %%\n", entity, reference)
	for _, c := range comparisons {
		delta, pct := "-", "-"
		if !c.Value.Missing && !c.Reference.Missing {
			delta = fmt.Sprintf("%+.2f", c.Delta)
			pct = fmt.Sprintf("%+.1f%%", c.DeltaPercent)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Field, cell(c.Value), cell(c.Reference), delta, pct)
	}
	return tw.Flush()
}

func writeRanking(w io.Writer, r *eurotab.Ranking) error {
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "RANK\tENTITY\t%s\n", r.Field)
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%g\n", e.Rank, e.Entity, e.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := r.Summary
	_, err := fmt.Fprintf(w, "\ncount=%d mean=%.3f median=%.3f min=%g max=%g stddev=%.3f\n",
		s.Count, s.Mean, s.Median, s.Min, s.Max, s.StdDev)
	return err
}

func writeSources(w io.Writer, sources []eurotab.Source) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "NAME\tSTRATEGY\tFIELDS\tDESCRIPTION")
	for _, s := range sources {
		fields := "all numeric"
		if len(s.Fields) > 0 {
			fields = fmt.Sprintf("%d", len(s.Fields))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Strategy, fields, s.Description)
	}
	return tw.Flush()
}
