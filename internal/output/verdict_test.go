package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/panbanda/ucr/internal/fileproc"
	"github.com/panbanda/ucr/pkg/analyzer/unused"
	"github.com/panbanda/ucr/pkg/stats"
)

func sampleAnalysis(verdict unused.Verdict) *unused.Analysis {
	a := &unused.Analysis{
		Path:        "Program.vb",
		Dialect:     "vb",
		EntryClass:  "program",
		EntryMethod: "main",
		Verdict:     verdict,
		Usage: unused.Usage{
			FromClasses: 40,
			FromMethods: 60,
			FromImports: 10,
			Used:        110,
			Total:       500,
			Fraction:    0.22,
		},
		Thresholds: unused.DefaultThresholds(),
		Entities: []unused.Entity{
			{Kind: unused.KindClass, Name: "program", Start: 0, End: 120, Seen: true},
			{Kind: unused.KindMethod, Name: "orphan", Class: "program", Start: 60, End: 90},
		},
		Sweeps: []unused.Sweep{
			{Index: 1, SeenClasses: 1, SeenMethods: 1, Changed: true},
			{Index: 2, SeenClasses: 1, SeenMethods: 1},
		},
	}
	if verdict == unused.VerdictFlagged {
		a.Message = unused.InvalidMessage
	}
	return a
}

func TestVerdictReportRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewVerdictReport(sampleAnalysis(unused.VerdictFlagged), false).RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Program.vb",
		"Entry:     program.main (vb)",
		"Verdict:   FLAGGED",
		"Used Code: 110 / 500 (22.0%), unused 390",
		"Breakdown: classes 40, methods 60, imports 10",
		unused.InvalidMessage,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderText() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Entities") {
		t.Error("RenderText() without debug should not include the entity table")
	}
}

func TestVerdictReportRenderTextDebug(t *testing.T) {
	var buf bytes.Buffer
	if err := NewVerdictReport(sampleAnalysis(unused.VerdictPass), true).RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Verdict:   PASS", "Entities", "orphan", "Sweeps"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderText() missing %q in:\n%s", want, out)
		}
	}
}

func TestVerdictReportRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := NewVerdictReport(sampleAnalysis(unused.VerdictFlagged), true).RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"## Program.vb",
		"- **Entry:** `program.main` (vb)",
		"- **Verdict:** FLAGGED",
		"> " + unused.InvalidMessage,
		"## Entities",
		"## Sweeps",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderMarkdown() missing %q in:\n%s", want, out)
		}
	}
}

func TestVerdictReportRenderData(t *testing.T) {
	a := sampleAnalysis(unused.VerdictPass)

	plain, ok := NewVerdictReport(a, false).RenderData().(*unused.Analysis)
	if !ok {
		t.Fatalf("RenderData() type = %T", NewVerdictReport(a, false).RenderData())
	}
	if plain.Entities != nil || plain.Sweeps != nil {
		t.Error("RenderData() without debug should drop entities and sweeps")
	}
	if len(a.Entities) != 2 {
		t.Error("RenderData() must not modify the wrapped analysis")
	}

	debug := NewVerdictReport(a, true).RenderData().(*unused.Analysis)
	if len(debug.Entities) != 2 || len(debug.Sweeps) != 2 {
		t.Error("RenderData() with debug should keep entities and sweeps")
	}
}

func TestVerdictReportJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterTo(&buf, FormatJSON, false)
	if err := f.Output(NewVerdictReport(sampleAnalysis(unused.VerdictFlagged), false)); err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded["verdict"] != "flagged" {
		t.Errorf("verdict = %v, want flagged", decoded["verdict"])
	}
	if _, ok := decoded["entities"]; ok {
		t.Error("entities should be omitted without debug")
	}
}

func TestBatchReport(t *testing.T) {
	results := []*unused.Analysis{
		sampleAnalysis(unused.VerdictPass),
		sampleAnalysis(unused.VerdictFlagged),
	}
	results[1].Path = "Other.vb"

	errs := &fileproc.ProcessingErrors{}
	errs.Add("Broken.vb", errors.New("malformed input"))

	summary := stats.Summarize([]float64{0.22, 0.22}, []int{390, 390}, 1, 1)
	report := NewBatchReport(results, errs, summary)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := report.RenderText(&buf, false); err != nil {
			t.Fatalf("RenderText() error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Unused Code Check",
			"Program.vb",
			"Other.vb",
			"program.main",
			"FLAGGED",
			"1 failed",
			"Broken.vb: malformed input",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("RenderText() missing %q in:\n%s", want, out)
			}
		}
		lower := strings.ToLower(out)
		for _, want := range []string{"2 checked", "1 flagged"} {
			if !strings.Contains(lower, want) {
				t.Errorf("RenderText() footer missing %q in:\n%s", want, out)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := report.RenderMarkdown(&buf); err != nil {
			t.Fatalf("RenderMarkdown() error: %v", err)
		}
		for _, want := range []string{"## Unused Code Check", "### Failures", "- `Broken.vb`: malformed input"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("RenderMarkdown() missing %q in:\n%s", want, buf.String())
			}
		}
	})

	t.Run("data", func(t *testing.T) {
		data, ok := report.RenderData().(BatchData)
		if !ok {
			t.Fatalf("RenderData() type = %T", report.RenderData())
		}
		if len(data.Results) != 2 || len(data.Failures) != 1 {
			t.Fatalf("data = %+v", data)
		}
		if data.Results[0].Entities != nil {
			t.Error("batch results should not carry entity tables")
		}
		if data.Summary.Count != 2 {
			t.Errorf("Summary.Count = %d, want 2", data.Summary.Count)
		}
	})
}

func TestBatchReportNoErrors(t *testing.T) {
	report := NewBatchReport(nil, nil, stats.Summary{})
	var buf bytes.Buffer
	if err := report.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	if strings.Contains(buf.String(), "Failures") {
		t.Error("no failures section expected")
	}
}
