package settings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	on  = Toggle{ID: "on-by-default", Label: "On", Default: true}
	off = Toggle{ID: "off-by-default", Label: "Off"}
)

func TestDefaults(t *testing.T) {
	r := New()
	r.Register(on)
	r.Register(off)

	assert.True(t, r.IsSelected(on.ID))
	assert.False(t, r.IsSelected(off.ID))
	assert.False(t, r.IsSelected("missing"))
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	r.Register(on)
	require.NoError(t, r.Set(on.ID, false))
	r.Register(on)

	assert.False(t, r.IsSelected(on.ID))
	assert.Len(t, r.Toggles(), 1)
}

func TestSetUnknown(t *testing.T) {
	r := New()
	err := r.Set("nope", true)
	assert.ErrorIs(t, err, ErrUnknownToggle)
}

func TestTogglesOrder(t *testing.T) {
	r := New()
	r.Register(off)
	r.Register(on)
	assert.Equal(t, []Toggle{off, on}, r.Toggles())
}

func TestApply(t *testing.T) {
	r := New()
	r.Register(on)
	r.Register(off)

	require.NoError(t, r.Apply([]string{"on-by-default=false, off-by-default"}))
	assert.False(t, r.IsSelected(on.ID))
	assert.True(t, r.IsSelected(off.ID))

	require.NoError(t, r.Apply([]string{"off-by-default=0", ""}))
	assert.False(t, r.IsSelected(off.ID))

	assert.ErrorIs(t, r.Apply([]string{"missing=true"}), ErrUnknownToggle)
	assert.Error(t, r.Apply([]string{"on-by-default=maybe"}))
}

func TestReset(t *testing.T) {
	r := New()
	r.Register(on)
	require.NoError(t, r.Set(on.ID, false))
	r.Reset()
	assert.True(t, r.IsSelected(on.ID))
}

func TestConcurrentReads(t *testing.T) {
	r := New()
	r.Register(on)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.IsSelected(on.ID)
			}
		}()
	}
	wg.Wait()
	assert.True(t, r.IsSelected(on.ID))
}
