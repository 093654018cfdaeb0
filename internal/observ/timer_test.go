package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("scan")
	tm.End(idx, "12 faces")
	tm.End(42, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 1 || rep.Phases[0].Name != "scan" || rep.Phases[0].Note != "12 faces" {
		t.Fatalf("report = %+v", rep)
	}
	if !strings.Contains(tm.Summary(), "// 12 faces") {
		t.Fatalf("summary = %q", tm.Summary())
	}
}

func TestTimerMeasure(t *testing.T) {
	tm := NewTimer()
	boom := errors.New("boom")
	if _, err := tm.Measure("compile", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Measure returned %v", err)
	}
	if got := tm.Report().Phases[0].Note; got != "failed" {
		t.Fatalf("note = %q", got)
	}
}

func TestEmptyReport(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || rep.Phases != nil {
		t.Fatalf("empty report = %+v", rep)
	}
}
