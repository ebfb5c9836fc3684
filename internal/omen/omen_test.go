package omen_test

import (
	"strings"
	"testing"

	"github.com/aretw0/machine/internal/omen"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.Origin = (*omen.Omen)(nil)

func captureHere() *omen.Omen {
	return omen.Capture(0)
}

func TestCapture_RootsTraceAtCaller(t *testing.T) {
	o := captureHere()

	frames := o.StackTrace()
	require.NotEmpty(t, frames)
	assert.True(t, strings.HasSuffix(frames[0].Function, "omen_test.captureHere"), "got %s", frames[0].Function)
	assert.Contains(t, o.String(), "omen_test.go")
}

func TestCapture_Skip(t *testing.T) {
	o := func() *omen.Omen { return omen.Capture(1) }()

	frames := o.StackTrace()
	require.NotEmpty(t, frames)
	assert.True(t, strings.HasSuffix(frames[0].Function, "omen_test.TestCapture_Skip"), "got %s", frames[0].Function)
}

func TestCapture_UniqueIDs(t *testing.T) {
	a := omen.Capture(0)
	b := omen.Capture(0)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 26)
}

func TestOmen_Nil(t *testing.T) {
	var o *omen.Omen
	assert.Nil(t, o.StackTrace())
	assert.Equal(t, "", o.String())
}
