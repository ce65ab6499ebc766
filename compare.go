package eurotab

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/nao1215/eurotab/domain/model"
)

// Comparison is one field of an entity measured against a reference entity.
type Comparison struct {
	Field     string
	Value     model.Value
	Reference model.Value
	// Delta is Value - Reference
	Delta float64
	// DeltaPercent is Delta relative to Reference, 0 when Reference is 0
	DeltaPercent float64
}

// Compare measures every field of entity against reference. Fields missing
// on either side are reported with zero deltas.
func Compare(rs *model.ResultSet, entity, reference string) ([]Comparison, error) {
	row, ok := rs.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}
	ref, ok := rs.Entity(reference)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, reference)
	}

	out := make([]Comparison, 0, len(rs.Fields))
	for _, field := range rs.Fields {
		c := Comparison{
			Field:     field,
			Value:     row.Value(field),
			Reference: ref.Value(field),
		}
		if !c.Value.Missing && !c.Reference.Missing {
			c.Delta = c.Value.Float - c.Reference.Float
			if c.Reference.Float != 0 {
				c.DeltaPercent = c.Delta / c.Reference.Float * 100
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// RankEntry is one entity in a ranking.
type RankEntry struct {
	Rank   int
	Entity string
	Value  float64
}

// Summary describes the distribution of a field.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
}

// Ranking is the result of Rank.
type Ranking struct {
	Field   string
	Entries []RankEntry
	Summary Summary
}

// Rank orders the entities by field, highest first. Missing values are left
// out; equal values keep file order. Repeated entities keep their first row.
func Rank(rs *model.ResultSet, field string) (*Ranking, error) {
	if !rs.HasField(field) {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}

	seen := make(map[string]bool, len(rs.Rows))
	entries := make([]RankEntry, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		if seen[row.Entity] {
			continue
		}
		seen[row.Entity] = true
		v := row.Value(field)
		if v.Missing {
			continue
		}
		entries = append(entries, RankEntry{Entity: row.Entity, Value: v.Float})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	summary, err := summarize(entries)
	if err != nil {
		return nil, err
	}
	return &Ranking{Field: field, Entries: entries, Summary: summary}, nil
}

// summarize computes the distribution of the ranked values.
func summarize(entries []RankEntry) (Summary, error) {
	if len(entries) == 0 {
		return Summary{}, nil
	}
	data := make(stats.Float64Data, 0, len(entries))
	for _, e := range entries {
		data = append(data, e.Value)
	}

	var (
		s   = Summary{Count: len(data)}
		err error
	)
	if s.Mean, err = data.Mean(); err != nil {
		return Summary{}, fmt.Errorf("failed to compute mean: %w", err)
	}
	if s.Median, err = data.Median(); err != nil {
		return Summary{}, fmt.Errorf("failed to compute median: %w", err)
	}
	if s.Min, err = data.Min(); err != nil {
		return Summary{}, fmt.Errorf("failed to compute min: %w", err)
	}
	if s.Max, err = data.Max(); err != nil {
		return Summary{}, fmt.Errorf("failed to compute max: %w", err)
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return Summary{}, fmt.Errorf("failed to compute standard deviation: %w", err)
	}
	return s, nil
}
