package progress

import (
	"bytes"
	"testing"

	"github.com/ziadkadry99/umlgen/internal/diagram"
)

func TestCIReporterCounted(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}
	r.Start(2)
	r.Update(1, "a.txt")
	r.Update(2, "b.txt")
	r.Finish()

	want := "Generating 2 diagrams\n[1/2] a.txt\n[2/2] b.txt\nDiagram generation complete\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestStatusSink(t *testing.T) {
	var buf bytes.Buffer
	sink := StatusSink(&CIReporter{Out: &buf})

	sink.SetStatus(diagram.StatusGenerating)
	sink.SetStatus(diagram.StatusSucceeded)

	want := "Generating diagram\nWaiting for the model\nDiagram generation complete\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}
