package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

func TestParseType(t *testing.T) {
	got, err := parseType("Use-Case")
	require.NoError(t, err)
	assert.Equal(t, diagram.TypeUseCase, got)

	_, err = parseType("gantt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class, sequence")
}

func TestReadInput(t *testing.T) {
	got, err := readInput([]string{"a", "Customer"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "a Customer", got)

	got, err = readInput(nil, strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readInput([]string{"-"}, strings.NewReader("dash"))
	require.NoError(t, err)
	assert.Equal(t, "dash", got)
}

func TestPumlPath(t *testing.T) {
	assert.Equal(t, filepath.Join("docs", "shop.puml"), pumlPath(filepath.Join("docs", "shop.txt"), ""))
	assert.Equal(t, filepath.Join("out", "shop.puml"), pumlPath(filepath.Join("docs", "shop.md"), "out"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&exitError{code: 2, err: errNoDiagram}))
	assert.ErrorIs(t, &exitError{code: 2, err: errNoDiagram}, errNoDiagram)
}

func TestEncoderEditor(t *testing.T) {
	e := encoderEditor{plantuml.NewEncoder("http://example.test/svg/")}
	enc := e.Edit("Bob -> Alice : hello")
	assert.Equal(t, "SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", enc.Token)
	assert.Equal(t, "http://example.test/svg/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", enc.URL)
}

type statusRecorder []diagram.Status

func (r *statusRecorder) SetStatus(s diagram.Status) { *r = append(*r, s) }

func TestFollowStatusForwardsChangesOnly(t *testing.T) {
	v, err := viewer.New(viewer.DefaultOptions())
	require.NoError(t, err)

	var got statusRecorder
	stop := followStatus(v, &got)
	v.SetStatus(diagram.StatusGenerating)
	v.ZoomIn()
	v.SetStatus(diagram.StatusSucceeded)
	stop()
	v.SetStatus(diagram.StatusFailed)

	assert.Equal(t, statusRecorder{diagram.StatusGenerating, diagram.StatusSucceeded}, got)
}
