// Package pipeline runs one cleaning pass: load the input CSV, apply the
// cleaning stages in order, write the result.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"csvclean/internal/config"
	"csvclean/internal/metrics"
	csvparser "csvclean/internal/parser/csv"
	"csvclean/internal/table"
	"csvclean/internal/transformer"
	"csvclean/internal/transformer/builtin"
)

// Stats summarizes a completed run.
type Stats struct {
	RowsLoaded        int
	DuplicatesDropped int
	CellsFilled       int
	DatesConverted    int
	RowsWritten       int
}

// Run executes the pipeline described by cfg. Progress lines are written to
// out; verbose diagnostics go to the standard logger when cfg.Verbose is set.
//
// Load and write failures are returned. Per-column date conversion problems
// are reported on out as warnings and never fail the run.
func Run(ctx context.Context, cfg *config.Config, out *log.Logger) (Stats, error) {
	var st Stats
	start := time.Now()

	out.Printf("[INFO] Loading: %s", cfg.Input)
	t, err := csvparser.Load(ctx, cfg.Input, csvparser.Options{
		Comma:       cfg.Comma(),
		Encoding:    cfg.Encoding,
		NAValues:    cfg.NAValues,
		NoDefaultNA: cfg.NoDefaultNA,
	})
	metrics.RecordStage(cfg.Job, "load", err, time.Since(start))
	if err != nil {
		return st, err
	}
	st.RowsLoaded = t.NumRows()
	metrics.RecordRows(cfg.Job, "loaded", st.RowsLoaded)
	if cfg.Verbose {
		log.Printf("loaded %d rows x %d columns", t.NumRows(), t.NumCols())
	}

	chain := buildChain(cfg, out, &st)
	t = chain.Run(cfg.Job, t, func(s transformer.Step) {
		out.Printf("[INFO] %s", s.Note)
	})

	if err := ctx.Err(); err != nil {
		return st, err
	}

	out.Printf("[INFO] Saving cleaned data to: %s", cfg.Output)
	wstart := time.Now()
	err = csvparser.Write(cfg.Output, t, csvparser.WriteOptions{Comma: cfg.Comma()})
	metrics.RecordStage(cfg.Job, "write", err, time.Since(wstart))
	if err != nil {
		return st, fmt.Errorf("save %s: %w", cfg.Output, err)
	}
	st.RowsWritten = t.NumRows()
	metrics.RecordRows(cfg.Job, "written", st.RowsWritten)

	if cfg.Verbose {
		log.Printf("wrote %d rows in %s (dropped=%d filled=%d dates=%d)",
			st.RowsWritten, time.Since(start).Truncate(time.Millisecond),
			st.DuplicatesDropped, st.CellsFilled, st.DatesConverted)
	}
	out.Print("[DONE]")
	return st, nil
}

// buildChain assembles the stages in their fixed order. Counting wrappers
// fill st as the stages run.
func buildChain(cfg *config.Config, out *log.Logger, st *Stats) transformer.Chain {
	chain := transformer.Chain{
		{Name: "standardize_columns", Note: "Standardizing columns...", Transformer: builtin.StandardizeColumns{}},
		{Name: "trim_strings", Note: "Stripping strings...", Transformer: builtin.TrimStrings{}},
	}

	if cfg.InferDates {
		dates := builtin.NewInferDates()
		dates.Workers = cfg.Workers
		dates.OnWarning = func(err error) {
			out.Printf("[WARN] %v", err)
		}
		dates.OnConvert = func(column string, parsed, total int) {
			st.DatesConverted += parsed
			metrics.RecordRows(cfg.Job, "dates_converted", parsed)
			if cfg.Verbose {
				log.Printf("date column %q: %d/%d values parsed", column, parsed, total)
			}
		}
		chain = append(chain, transformer.Step{
			Name: "infer_dates", Note: "Inferring and formatting date columns...", Transformer: dates,
		})
	}

	dedup := builtin.DeDup{Key: cfg.IDCol}
	chain = append(chain,
		transformer.Step{
			Name: "dedup", Note: "Dropping duplicates...",
			Transformer: transformer.Func(func(in *table.Table) *table.Table {
				if _, ok := dedup.KeyIndex(in); !ok && cfg.IDCol != "" {
					out.Printf("[WARN] id column %q not found; comparing whole rows", cfg.IDCol)
				}
				res := dedup.Apply(in)
				st.DuplicatesDropped = in.NumRows() - res.NumRows()
				metrics.RecordRows(cfg.Job, "duplicates_dropped", st.DuplicatesDropped)
				return res
			}),
		},
		transformer.Step{
			Name: "fill_missing", Note: "Filling missing values...",
			Transformer: transformer.Func(func(in *table.Table) *table.Table {
				st.CellsFilled = in.CountMissing()
				metrics.RecordRows(cfg.Job, "filled", st.CellsFilled)
				return builtin.FillMissing{}.Apply(in)
			}),
		},
	)
	return chain
}
