package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer(t *testing.T) {
	t.Run("Should deliver only the last query of a burst", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)
		defer d.Stop()
		d.Trigger("a")
		d.Trigger("ac")
		d.Trigger("acme")
		select {
		case q := <-d.C():
			assert.Equal(t, "acme", q)
		case <-time.After(time.Second):
			require.FailNow(t, "debounced query was not delivered")
		}
		select {
		case q := <-d.C():
			assert.Failf(t, "unexpected second delivery", "got %q", q)
		case <-time.After(60 * time.Millisecond):
		}
	})

	t.Run("Should deliver immediately with zero wait", func(t *testing.T) {
		d := NewDebouncer(0)
		defer d.Stop()
		d.Trigger("now")
		select {
		case q := <-d.C():
			assert.Equal(t, "now", q)
		default:
			require.FailNow(t, "expected immediate delivery")
		}
	})

	t.Run("Should not deliver after stop", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)
		d.Trigger("x")
		d.Stop()
		select {
		case q := <-d.C():
			assert.Failf(t, "unexpected delivery", "got %q", q)
		case <-time.After(60 * time.Millisecond):
		}
	})
}
