package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/ucr/internal/fileproc"
	"github.com/panbanda/ucr/pkg/analyzer/unused"
	"github.com/panbanda/ucr/pkg/stats"
)

// VerdictReport renders one analysis. With Debug set the entity table and
// the propagation sweeps are included.
type VerdictReport struct {
	Analysis *unused.Analysis
	Debug    bool
}

// NewVerdictReport wraps an analysis for rendering.
func NewVerdictReport(a *unused.Analysis, debug bool) *VerdictReport {
	return &VerdictReport{Analysis: a, Debug: debug}
}

func (r *VerdictReport) RenderData() any {
	if r.Debug {
		return r.Analysis
	}
	trimmed := *r.Analysis
	trimmed.Entities = nil
	trimmed.Sweeps = nil
	return &trimmed
}

func (r *VerdictReport) RenderText(w io.Writer, colored bool) error {
	a := r.Analysis
	if a.Path != "" {
		writeTitle(w, a.Path, "=", colored, color.Bold)
	}
	fmt.Fprintf(w, "Entry:     %s.%s (%s)\n", a.EntryClass, a.EntryMethod, a.Dialect)

	verdict := strings.ToUpper(string(a.Verdict))
	if colored {
		verdict = VerdictColor(a.Verdict, verdict)
	}
	fmt.Fprintf(w, "Verdict:   %s\n", verdict)
	fmt.Fprintf(w, "Used Code: %s\n", usageLine(a.Usage))
	fmt.Fprintf(w, "Breakdown: classes %d, methods %d, imports %d\n",
		a.Usage.FromClasses, a.Usage.FromMethods, a.Usage.FromImports)
	if a.Message != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, a.Message)
	}

	if r.Debug {
		fmt.Fprintln(w)
		if err := entityTable(a).RenderText(w, colored); err != nil {
			return err
		}
		return sweepTable(a).RenderText(w, colored)
	}
	return nil
}

func (r *VerdictReport) RenderMarkdown(w io.Writer) error {
	a := r.Analysis
	title := a.Path
	if title == "" {
		title = "Unused Code Check"
	}
	fmt.Fprintf(w, "## %s\n\n", title)
	fmt.Fprintf(w, "- **Entry:** `%s.%s` (%s)\n", a.EntryClass, a.EntryMethod, a.Dialect)
	fmt.Fprintf(w, "- **Verdict:** %s\n", strings.ToUpper(string(a.Verdict)))
	fmt.Fprintf(w, "- **Used Code:** %s\n", usageLine(a.Usage))
	if a.Message != "" {
		fmt.Fprintf(w, "\n> %s\n", a.Message)
	}
	fmt.Fprintln(w)

	if r.Debug {
		if err := entityTable(a).RenderMarkdown(w); err != nil {
			return err
		}
		return sweepTable(a).RenderMarkdown(w)
	}
	return nil
}

func usageLine(u unused.Usage) string {
	return fmt.Sprintf("%d / %d (%.1f%%), unused %d", u.Used, u.Total, u.Fraction*100, u.Unused())
}

func entityTable(a *unused.Analysis) *Table {
	rows := make([][]string, 0, len(a.Entities))
	for _, e := range a.Entities {
		rows = append(rows, []string{
			string(e.Kind),
			e.Name,
			e.Class,
			strconv.Itoa(e.Start),
			strconv.Itoa(e.End),
			yesNo(e.Seen),
			yesNo(e.Comparator),
		})
	}
	return NewTable("Entities",
		[]string{"Kind", "Name", "Class", "Start", "End", "Seen", "Comparator"},
		rows, nil, a.Entities)
}

func sweepTable(a *unused.Analysis) *Table {
	rows := make([][]string, 0, len(a.Sweeps))
	for _, s := range a.Sweeps {
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			strconv.Itoa(s.SeenClasses),
			strconv.Itoa(s.SeenMethods),
			yesNo(s.Changed),
		})
	}
	return NewTable("Sweeps",
		[]string{"Sweep", "Seen Classes", "Seen Methods", "Changed"},
		rows, nil, a.Sweeps)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// BatchData is the serialized form of a batch run.
type BatchData struct {
	Summary  stats.Summary      `json:"summary" toon:"summary"`
	Results  []*unused.Analysis `json:"results" toon:"results"`
	Failures []BatchFailure     `json:"failures,omitempty" toon:"failures"`
}

// BatchFailure is a submission that could not be analyzed.
type BatchFailure struct {
	Path  string `json:"path" toon:"path"`
	Error string `json:"error" toon:"error"`
}

// BatchReport renders the verdicts of a batch with a summary footer.
type BatchReport struct {
	data BatchData
}

// NewBatchReport builds a report. Entity tables are dropped from results.
func NewBatchReport(results []*unused.Analysis, errs *fileproc.ProcessingErrors, summary stats.Summary) *BatchReport {
	data := BatchData{Summary: summary}
	for _, a := range results {
		trimmed := *a
		trimmed.Entities = nil
		trimmed.Sweeps = nil
		data.Results = append(data.Results, &trimmed)
	}
	if errs != nil {
		for _, e := range errs.Errors {
			data.Failures = append(data.Failures, BatchFailure{Path: e.Path, Error: e.Err.Error()})
		}
	}
	return &BatchReport{data: data}
}

func (r *BatchReport) RenderData() any {
	return r.data
}

func (r *BatchReport) table(colored bool) *Table {
	rows := make([][]string, 0, len(r.data.Results))
	for _, a := range r.data.Results {
		verdict := strings.ToUpper(string(a.Verdict))
		if colored {
			verdict = VerdictColor(a.Verdict, verdict)
		}
		rows = append(rows, []string{
			a.Path,
			a.EntryClass + "." + a.EntryMethod,
			verdict,
			strconv.Itoa(a.Usage.Used),
			strconv.Itoa(a.Usage.Total),
			fmt.Sprintf("%.1f%%", a.Usage.Fraction*100),
		})
	}
	s := r.data.Summary
	footer := []string{
		fmt.Sprintf("%d checked", s.Count),
		"",
		fmt.Sprintf("%d flagged", s.Flagged),
		"",
		"",
		fmt.Sprintf("median %.1f%%", s.Median*100),
	}
	return NewTable("Unused Code Check",
		[]string{"Path", "Entry", "Verdict", "Used", "Total", "Used %"},
		rows, footer, nil)
}

func (r *BatchReport) summaryLine() string {
	s := r.data.Summary
	return fmt.Sprintf("mean %.1f%%, p10 %.1f%%, p90 %.1f%%, stddev %.3f, mean unused %.0f chars, %d failed",
		s.MeanFraction*100, s.P10*100, s.P90*100, s.StdDev, s.MeanUnused, s.Failed)
}

func (r *BatchReport) RenderText(w io.Writer, colored bool) error {
	if err := r.table(colored).RenderText(w, colored); err != nil {
		return err
	}
	fmt.Fprintln(w, r.summaryLine())
	if len(r.data.Failures) > 0 {
		fmt.Fprintln(w)
		for _, f := range r.data.Failures {
			line := fmt.Sprintf("%s: %s", f.Path, f.Error)
			if colored {
				line = color.RedString(line)
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func (r *BatchReport) RenderMarkdown(w io.Writer) error {
	if err := r.table(false).RenderMarkdown(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n\n", r.summaryLine())
	if len(r.data.Failures) > 0 {
		fmt.Fprintln(w, "### Failures")
		fmt.Fprintln(w)
		for _, f := range r.data.Failures {
			fmt.Fprintf(w, "- `%s`: %s\n", f.Path, f.Error)
		}
		fmt.Fprintln(w)
	}
	return nil
}
