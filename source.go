package eurotab

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/eurotab/domain/model"
	"gopkg.in/yaml.v3"
)

// Built-in source names.
const (
	// SourceEurostatMaster reads the Eurostat master export by header labels
	SourceEurostatMaster = "eurostat-master"
	// SourceEurostatMasterOffsets reads the same export by fixed column positions
	SourceEurostatMasterOffsets = "eurostat-master-offsets"
)

// Logical field names of the Eurostat master export.
const (
	FieldCurrencyDeposits = "Currency and deposits"
	FieldInsurance        = "Insurance, pensions and standardised guarantees"
	// FieldInsuranceShort is the alias used by the offset table
	FieldInsuranceShort = "Insurance"
	FieldAICOnGDP       = "AIC ON GPD"
	FieldAICOnCAD       = "AIC ON CAD"
	FieldCADOnINS       = "CAD on INS"
	FieldInsOnFA        = "Ins on FA"
	FieldFAOnGDP        = "FA ON GDP"
)

// defaultDelimiter is the delimiter of European CSV exports
const defaultDelimiter = ";"

// Source describes how one family of exports is laid out.
type Source struct {
	// Name identifies the source
	Name string
	// Description is free text shown by the CLI
	Description string
	// Delimiter is the single-character cell separator. Empty means ";".
	Delimiter string
	// HeaderMarker identifies the header line
	HeaderMarker string
	// HeaderMatch selects contains or prefix matching of HeaderMarker
	HeaderMatch HeaderMatch
	// Strategy selects label or offset column resolution
	Strategy model.Strategy
	// Fields are the logical fields to extract. With the label strategy an
	// empty list selects every numeric column.
	Fields []string
	// Offsets maps fields to column positions for the offset strategy
	Offsets map[string]int
	// EntityColumn is the column holding the entity key
	EntityColumn int
	// StopMarkers end the data block
	StopMarkers []string
	// NullTokens are cell texts meaning "no data"
	NullTokens []string
	// Missing decides what empty cells become
	Missing MissingPolicy
	// PercentAsFraction divides percent values by 100
	PercentAsFraction bool
	// Strict makes unresolved fields fatal
	Strict bool
	// Encoding of text inputs
	Encoding Encoding
	// Sheet is the workbook sheet for XLSX inputs. Empty means the first sheet.
	Sheet string
}

// delimiter returns the effective delimiter.
func (s Source) delimiter() string {
	if s.Delimiter == "" {
		return defaultDelimiter
	}
	return s.Delimiter
}

// fieldList returns Fields, or the offset table ordered by position when
// Fields is empty and the strategy is offset.
func (s Source) fieldList() []string {
	if len(s.Fields) > 0 || s.Strategy != model.StrategyOffset {
		return append([]string(nil), s.Fields...)
	}
	fields := make([]string, 0, len(s.Offsets))
	for f := range s.Offsets {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		oi, oj := s.Offsets[fields[i]], s.Offsets[fields[j]]
		if oi != oj {
			return oi < oj
		}
		return fields[i] < fields[j]
	})
	return fields
}

// numberOptions returns the Normalizer options of the source.
func (s Source) numberOptions() NumberOptions {
	return NumberOptions{
		Missing:           s.Missing,
		NullTokens:        s.NullTokens,
		PercentAsFraction: s.PercentAsFraction,
	}
}

// Validate checks that the source can drive an extraction.
func (s Source) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if s.HeaderMarker == "" {
		errs = append(errs, errors.New("header marker is empty"))
	}
	if utf8.RuneCountInString(s.delimiter()) != 1 {
		errs = append(errs, fmt.Errorf("delimiter %q must be a single character", s.Delimiter))
	}
	if s.EntityColumn < 0 {
		errs = append(errs, fmt.Errorf("entity column %d is negative", s.EntityColumn))
	}
	if _, err := s.Encoding.decoder(); err != nil {
		errs = append(errs, err)
	}
	switch s.Strategy {
	case model.StrategyLabel:
	case model.StrategyOffset:
		if len(s.Offsets) == 0 {
			errs = append(errs, errors.New("offset strategy needs an offset table"))
		}
		for _, f := range s.Fields {
			if _, ok := s.Offsets[f]; !ok {
				errs = append(errs, fmt.Errorf("field %q has no offset", f))
			}
		}
		for f, o := range s.Offsets {
			if o < 0 {
				errs = append(errs, fmt.Errorf("field %q has negative offset %d", f, o))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown strategy %v", s.Strategy))
	}
	if len(errs) == 0 {
		return nil
	}
	name := s.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Errorf("%w %s: %w", ErrInvalidSource, name, errors.Join(errs...))
}

// EurostatMaster returns the label based source for the Eurostat master export.
func EurostatMaster() Source {
	return Source{
		Name:         SourceEurostatMaster,
		Description:  "Eurostat household financial assets, columns found by header label",
		HeaderMarker: "Country;Currency and deposits;",
		HeaderMatch:  MatchContains,
		Strategy:     model.StrategyLabel,
		Fields: []string{
			FieldCurrencyDeposits,
			FieldInsurance,
			FieldAICOnGDP,
			FieldAICOnCAD,
			FieldCADOnINS,
			FieldInsOnFA,
			FieldFAOnGDP,
		},
		StopMarkers: []string{"tree - simulating"},
		NullTokens:  []string{":"},
	}
}

// EurostatMasterOffsets returns the offset based source for exports whose
// ratio block has blank or repeated header labels.
func EurostatMasterOffsets() Source {
	return Source{
		Name:         SourceEurostatMasterOffsets,
		Description:  "Eurostat household financial assets, columns found by fixed position",
		HeaderMarker: "Country;",
		HeaderMatch:  MatchPrefix,
		Strategy:     model.StrategyOffset,
		Fields: []string{
			FieldCurrencyDeposits,
			FieldInsuranceShort,
			FieldAICOnGDP,
			FieldAICOnCAD,
			FieldCADOnINS,
			FieldInsOnFA,
			FieldFAOnGDP,
		},
		Offsets: map[string]int{
			FieldCurrencyDeposits: 1,
			FieldInsuranceShort:   5,
			FieldAICOnGDP:         10,
			FieldAICOnCAD:         11,
			FieldCADOnINS:         12,
			FieldInsOnFA:          13,
			FieldFAOnGDP:          14,
		},
		StopMarkers: []string{"tree - simulating"},
		NullTokens:  []string{":"},
	}
}

// BuiltinSources returns the sources shipped with the package.
func BuiltinSources() []Source {
	return []Source{EurostatMaster(), EurostatMasterOffsets()}
}

// FindSource returns the source called name. Later entries of extra shadow
// built-in sources with the same name.
func FindSource(name string, extra ...Source) (Source, error) {
	for i := len(extra) - 1; i >= 0; i-- {
		if extra[i].Name == name {
			return extra[i], nil
		}
	}
	for _, s := range BuiltinSources() {
		if s.Name == name {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("%w: unknown source %q", ErrInvalidSource, name)
}

// sourceFile is the YAML layout of a source definition file.
type sourceFile struct {
	Sources []sourceYAML `yaml:"sources"`
}

type sourceYAML struct {
	Name              string         `yaml:"name"`
	Description       string         `yaml:"description"`
	Delimiter         string         `yaml:"delimiter"`
	HeaderMarker      string         `yaml:"header_marker"`
	HeaderMatch       string         `yaml:"header_match"`
	Strategy          string         `yaml:"strategy"`
	Fields            []string       `yaml:"fields"`
	Offsets           map[string]int `yaml:"offsets"`
	EntityColumn      int            `yaml:"entity_column"`
	StopMarkers       []string       `yaml:"stop_markers"`
	NullTokens        []string       `yaml:"null_tokens"`
	Missing           string         `yaml:"missing"`
	PercentAsFraction bool           `yaml:"percent_as_fraction"`
	Strict            bool           `yaml:"strict"`
	Encoding          string         `yaml:"encoding"`
	Sheet             string         `yaml:"sheet"`
}

func (y sourceYAML) toSource() (Source, error) {
	strategy, err := model.ParseStrategy(y.Strategy)
	if err != nil {
		return Source{}, fmt.Errorf("%w: source %q: %w", ErrInvalidSource, y.Name, err)
	}
	match, err := parseHeaderMatch(y.HeaderMatch)
	if err != nil {
		return Source{}, fmt.Errorf("source %q: %w", y.Name, err)
	}
	missing, err := parseMissingPolicy(y.Missing)
	if err != nil {
		return Source{}, fmt.Errorf("source %q: %w", y.Name, err)
	}
	s := Source{
		Name:              y.Name,
		Description:       y.Description,
		Delimiter:         y.Delimiter,
		HeaderMarker:      y.HeaderMarker,
		HeaderMatch:       match,
		Strategy:          strategy,
		Fields:            y.Fields,
		Offsets:           y.Offsets,
		EntityColumn:      y.EntityColumn,
		StopMarkers:       y.StopMarkers,
		NullTokens:        y.NullTokens,
		Missing:           missing,
		PercentAsFraction: y.PercentAsFraction,
		Strict:            y.Strict,
		Encoding:          Encoding(strings.ToLower(strings.TrimSpace(y.Encoding))),
		Sheet:             y.Sheet,
	}
	return s, s.Validate()
}

func parseMissingPolicy(name string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zero":
		return MissingAsZero, nil
	case "null", "missing":
		return MissingAsNull, nil
	default:
		return MissingAsZero, fmt.Errorf("%w: unknown missing policy %q", ErrInvalidSource, name)
	}
}

// LoadSources reads YAML source definitions:
//
//	sources:
//	  - name: household-assets
//	    header_marker: "Country;Currency and deposits;"
//	    strategy: label
//	    fields: ["Currency and deposits", "FA ON GDP"]
//	    null_tokens: [":"]
func LoadSources(r io.Reader) ([]Source, error) {
	var file sourceFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	sources := make([]Source, 0, len(file.Sources))
	seen := make(map[string]bool, len(file.Sources))
	for _, y := range file.Sources {
		s, err := y.toSource()
		if err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate source %q", ErrInvalidSource, s.Name)
		}
		seen[s.Name] = true
		sources = append(sources, s)
	}
	return sources, nil
}

// LoadSourcesFile reads YAML source definitions from path.
func LoadSourcesFile(path string) ([]Source, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewErrorContext("load sources", path).Error(ErrFileNotFound)
		}
		return nil, NewErrorContext("load sources", path).Error(err)
	}
	defer f.Close()

	sources, err := LoadSources(f)
	if err != nil {
		return nil, NewErrorContext("load sources", path).Error(err)
	}
	return sources, nil
}
