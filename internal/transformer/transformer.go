// Package transformer runs the ordered cleaning stages over a table. Each
// stage receives the table produced by the previous one and returns a new
// table; stages never share mutable state.
package transformer

import (
	"time"

	"csvclean/internal/metrics"
	"csvclean/internal/table"
)

// Transformer is a single, total table-to-table stage.
type Transformer interface {
	Apply(*table.Table) *table.Table
}

// Func adapts a plain function to Transformer.
type Func func(*table.Table) *table.Table

func (f Func) Apply(t *table.Table) *table.Table { return f(t) }

// Step names a transformer for progress output and metrics.
type Step struct {
	// Name is the metrics stage label, e.g. "dedup".
	Name string
	// Note is the progress line announced before the step runs.
	Note string
	Transformer
}

// Chain is an ordered list of steps.
type Chain []Step

// Apply runs every step in order.
func (c Chain) Apply(in *table.Table) *table.Table {
	return c.Run("", in, nil)
}

// Run applies the chain, calling before ahead of each step (when non-nil)
// and recording per-stage metrics under job.
func (c Chain) Run(job string, in *table.Table, before func(Step)) *table.Table {
	out := in
	for _, s := range c {
		if before != nil {
			before(s)
		}
		start := time.Now()
		out = s.Apply(out)
		metrics.RecordStage(job, s.Name, nil, time.Since(start))
	}
	return out
}
