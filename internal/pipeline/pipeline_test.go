package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvclean/internal/config"
	csvparser "csvclean/internal/parser/csv"
)

const customers = "Name ,Age,Signup Date\n" +
	"Alice,30,2023-01-05\n" +
	"Bob,,01/05/2023\n" +
	"Alice,31,2023-02-01\n" +
	"Carol,25,\"Jan 7, 2023\"\n"

func newConfig(in, out string) *config.Config {
	return &config.Config{
		Input:     in,
		Output:    out,
		Delimiter: ",",
		Encoding:  "utf-8",
		Workers:   1,
		Job:       "test",
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func run(t *testing.T, cfg *config.Config) (Stats, string) {
	t.Helper()
	var buf bytes.Buffer
	st, err := Run(context.Background(), cfg, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("Run: %v\noutput:\n%s", err, buf.String())
	}
	return st, buf.String()
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(b)
}

// TestRun_EndToEnd covers the documented example: names normalized, one
// duplicate by name dropped, the missing age filled with 0 and dates in ISO
// form.
func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "raw.csv", customers)
	out := filepath.Join(dir, "nested", "clean", "out.csv")

	cfg := newConfig(in, out)
	cfg.IDCol = "name"
	cfg.InferDates = true

	st, progress := run(t, cfg)

	want := "name,age,signup_date\n" +
		"Alice,30,2023-01-05\n" +
		"Bob,0,2023-01-05\n" +
		"Carol,25,2023-01-07\n"
	if got := readFile(t, out); got != want {
		t.Fatalf("output mismatch\n got:\n%s\nwant:\n%s", got, want)
	}

	if st.RowsLoaded != 4 || st.RowsWritten != 3 || st.DuplicatesDropped != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.CellsFilled != 1 || st.DatesConverted != 4 {
		t.Fatalf("stats = %+v", st)
	}

	wantLines := []string{
		"[INFO] Loading: " + in,
		"[INFO] Standardizing columns...",
		"[INFO] Stripping strings...",
		"[INFO] Inferring and formatting date columns...",
		"[INFO] Dropping duplicates...",
		"[INFO] Filling missing values...",
		"[INFO] Saving cleaned data to: " + out,
		"[DONE]",
	}
	if got := strings.Split(strings.TrimSuffix(progress, "\n"), "\n"); strings.Join(got, "\n") != strings.Join(wantLines, "\n") {
		t.Fatalf("progress lines:\n%s\nwant:\n%s", progress, strings.Join(wantLines, "\n"))
	}
}

// TestRun_Idempotent feeds each run's output back in; the second pass must
// reproduce the first byte for byte.
func TestRun_Idempotent(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		idCol  string
		dates  bool
		output string // expected first-pass output; empty skips the check
	}{
		{name: "customers", input: customers, idCol: "name", dates: true},
		{
			name:   "blank_cell_in_numeric_column",
			input:  "code,label\n5,a\n   ,b\n",
			output: "code,label\n5,a\n0,b\n",
		},
		{
			name:   "padded_na_marker",
			input:  "code,label\n1, NA \n2,x\n",
			output: "code,label\n1,\n2,x\n",
		},
		{
			name:   "missing_vs_zero_duplicate",
			input:  "name,n\nx,0\nx,\n",
			output: "name,n\nx,0\n",
		},
		{
			name:   "missing_vs_blank_text_duplicate",
			input:  "id,note\n1,\n1,  \n",
			output: "id,note\n1,\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writeFile(t, dir, "raw.csv", tt.input)
			first := filepath.Join(dir, "first.csv")
			second := filepath.Join(dir, "second.csv")

			cfg := newConfig(in, first)
			cfg.IDCol = tt.idCol
			cfg.InferDates = tt.dates
			run(t, cfg)

			cfg2 := *cfg
			cfg2.Input, cfg2.Output = first, second
			run(t, &cfg2)

			a, b := readFile(t, first), readFile(t, second)
			if tt.output != "" && a != tt.output {
				t.Fatalf("first pass output:\n%s\nwant:\n%s", a, tt.output)
			}
			if a != b {
				t.Fatalf("second pass changed output\nfirst:\n%s\nsecond:\n%s", a, b)
			}
		})
	}
}

func TestRun_NoDatesNoKey(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "raw.csv",
		"Customer ID!, First   Name ,Joined\n"+
			"1,  Ann ,01/05/2023\n"+
			"1,  Ann ,01/05/2023\n"+
			"2,,NULL\n")
	out := filepath.Join(dir, "out.csv")

	st, progress := run(t, newConfig(in, out))

	want := "customer_id,first_name,joined\n" +
		"1,Ann,01/05/2023\n" +
		"2,,\n"
	if got := readFile(t, out); got != want {
		t.Fatalf("output mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(progress, "Inferring") {
		t.Fatalf("date stage announced without --infer-dates:\n%s", progress)
	}
	if st.RowsWritten > st.RowsLoaded {
		t.Fatalf("row count grew: %+v", st)
	}
}

func TestRun_UnknownIDColWarns(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "raw.csv", "a,b\n1,x\n1,x\n1,y\n")
	out := filepath.Join(dir, "out.csv")

	cfg := newConfig(in, out)
	cfg.IDCol = "missing"
	st, progress := run(t, cfg)

	if !strings.Contains(progress, `[WARN] id column "missing" not found`) {
		t.Fatalf("no warning in progress:\n%s", progress)
	}
	if st.DuplicatesDropped != 1 {
		t.Fatalf("full-row fallback dropped %d rows, want 1", st.DuplicatesDropped)
	}
}

func TestRun_NoMissingCellsInOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "raw.csv", "id,score,note\n1,,\n2,3.5,NA\n3,,ok\n4\n")
	out := filepath.Join(dir, "out.csv")

	run(t, newConfig(in, out))

	tb, err := csvparser.Load(context.Background(), out, csvparser.Options{NoDefaultNA: true})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	// Text columns are filled with "", which reads back as missing; numeric
	// columns must be fully populated.
	score := tb.Columns[tb.Index("score")]
	for i, v := range score.Values {
		if !v.Valid {
			t.Fatalf("score row %d missing after fill", i)
		}
	}
	if got := readFile(t, out); got != "id,score,note\n1,0,\n2,3.5,\n3,0,ok\n4,0,\n" {
		t.Fatalf("output:\n%s", got)
	}
}

func TestRun_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	var buf bytes.Buffer
	_, err := Run(context.Background(), newConfig(filepath.Join(dir, "nope.csv"), out), log.New(&buf, "", 0))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
	var le *csvparser.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %T, want *csv.LoadError", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, fs.ErrNotExist) {
		t.Fatalf("output created despite load failure")
	}

	empty := writeFile(t, dir, "empty.csv", "")
	if _, err := Run(context.Background(), newConfig(empty, out), log.New(&buf, "", 0)); !errors.As(err, &le) {
		t.Fatalf("empty input err = %v, want *csv.LoadError", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "raw.csv", customers)
	out := filepath.Join(dir, "out.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if _, err := Run(ctx, newConfig(in, out), log.New(&buf, "", 0)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
