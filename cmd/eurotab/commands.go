package main

import (
	"fmt"
	"strings"

	"github.com/nao1215/eurotab"
	"github.com/nao1215/eurotab/domain/model"
	"github.com/spf13/cobra"
)

// sourceFlags select the source definition and tune the extractor.
type sourceFlags struct {
	source      string
	sourcesFile string
	workers     int
}

func (a *app) bindSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVar(&f.source, "source", a.cfg.Source, "Source definition name")
	cmd.Flags().StringVar(&f.sourcesFile, "sources-file", a.cfg.SourcesFile, "YAML file with extra source definitions")
	cmd.Flags().IntVar(&f.workers, "workers", a.cfg.Workers, "Normalization workers (0 for the default)")
}

// sources returns the built-in sources followed by the ones of sourcesFile.
func (a *app) sources(sourcesFile string) ([]eurotab.Source, error) {
	if sourcesFile == "" {
		return nil, nil
	}
	defined, err := eurotab.LoadSourcesFile(sourcesFile)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded source definitions", "file", sourcesFile, "count", len(defined))
	return defined, nil
}

func (a *app) newExtractor(f sourceFlags, opts ...eurotab.Option) (*eurotab.Extractor, error) {
	defined, err := a.sources(f.sourcesFile)
	if err != nil {
		return nil, err
	}
	src, err := eurotab.FindSource(f.source, defined...)
	if err != nil {
		return nil, err
	}

	all := []eurotab.Option{eurotab.WithLogger(a.logger)}
	if f.workers > 0 {
		all = append(all, eurotab.WithWorkers(f.workers))
	}
	return eurotab.NewExtractor(src, append(all, opts...)...)
}

func newExtractCmd(a *app) *cobra.Command {
	var (
		sf       sourceFlags
		entities []string
		fallback bool
		format   string
		output   string
		compress string
		decimals int
	)

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract the fields of the selected entities",
		Example: `  eurotab extract MASTER_EUROSTAT.csv --entity Italy --entity EU
  eurotab extract MASTER_EUROSTAT.csv.gz --format parquet --output out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []eurotab.Option
			if len(entities) > 0 {
				opts = append(opts, eurotab.WithEntities(entities...))
			}
			e, err := a.newExtractor(sf, opts...)
			if err != nil {
				return err
			}

			var rs *model.ResultSet
			if fallback {
				rs, err = e.ExtractOrDefault(cmd.Context(), args[0], nil)
			} else {
				rs, err = e.Extract(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if rs.IsFallback() {
				a.logger.Warn("using the built-in dataset", "file", args[0], "cause", rs.FallbackCause)
			}
			return a.writeResult(cmd, rs, format, output, eurotab.NewDumpOptions().WithDecimals(decimals), compress)
		},
	}

	a.bindSourceFlags(cmd, &sf)
	cmd.Flags().StringSliceVar(&entities, "entity", nil, "Entity to keep (repeatable, default all)")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "Use the built-in dataset when extraction fails")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, csv, tsv, parquet, xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "Output directory for csv, tsv, parquet and xlsx")
	cmd.Flags().StringVar(&compress, "compress", "none", "Compression for csv and tsv: none, gz, xz, zstd")
	cmd.Flags().IntVar(&decimals, "decimals", 0, "Fixed decimals for csv and tsv (0 for the shortest form)")
	return cmd
}

func (a *app) writeResult(cmd *cobra.Command, rs *model.ResultSet, format, output string, opts eurotab.DumpOptions, compress string) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "table":
		return writeTable(out, rs)
	case "json":
		return writeJSON(out, rs)
	}

	of, err := eurotab.ParseOutputFormat(format)
	if err != nil {
		return err
	}
	ct, err := eurotab.ParseCompressionType(compress)
	if err != nil {
		return err
	}
	path, err := eurotab.Dump(rs, output, opts.WithFormat(of).WithCompression(ct))
	if err != nil {
		return err
	}
	a.logger.Info("wrote result", "path", path, "rows", rs.Len())
	_, err = fmt.Fprintln(out, path)
	return err
}

func newCompareCmd(a *app) *cobra.Command {
	var (
		sf        sourceFlags
		entity    string
		reference string
	)

	cmd := &cobra.Command{
		Use:     "compare FILE",
		Short:   "Compare an entity with a reference entity field by field",
		Example: `  eurotab compare MASTER_EUROSTAT.csv --entity Italy --reference EU`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newExtractor(sf, eurotab.WithEntities(entity, reference), eurotab.RequireEntities())
			if err != nil {
				return err
			}
			rs, err := e.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			comparisons, err := eurotab.Compare(rs, entity, reference)
			if err != nil {
				return err
			}
			return writeComparisons(cmd.OutOrStdout(), entity, reference, comparisons)
		},
	}

	a.bindSourceFlags(cmd, &sf)
	cmd.Flags().StringVar(&entity, "entity", eurotab.EntityItaly, "Entity to compare")
	cmd.Flags().StringVar(&reference, "reference", eurotab.EntityEU, "Reference entity")
	return cmd
}

func newRankCmd(a *app) *cobra.Command {
	var (
		sf    sourceFlags
		field string
	)

	cmd := &cobra.Command{
		Use:     "rank FILE",
		Short:   "Rank entities by one field",
		Example: `  eurotab rank MASTER_EUROSTAT.csv --field "CAD on INS"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newExtractor(sf)
			if err != nil {
				return err
			}
			rs, err := e.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ranking, err := eurotab.Rank(rs, field)
			if err != nil {
				return err
			}
			return writeRanking(cmd.OutOrStdout(), ranking)
		},
	}

	a.bindSourceFlags(cmd, &sf)
	cmd.Flags().StringVar(&field, "field", "", "Field to rank by")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newSourcesCmd(a *app) *cobra.Command {
	var sourcesFile string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the available source definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defined, err := a.sources(sourcesFile)
			if err != nil {
				return err
			}
			return writeSources(cmd.OutOrStdout(), append(eurotab.BuiltinSources(), defined...))
		},
	}
	cmd.Flags().StringVar(&sourcesFile, "sources-file", a.cfg.SourcesFile, "YAML file with extra source definitions")
	return cmd
}
