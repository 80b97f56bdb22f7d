package monitoring

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer SetLogger(orig)

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("sample %s failed", "a.npz")
	assert.Equal(t, []string{"sample a.npz failed"}, got)

	SetLogger(nil)
	Logf("muted")
	assert.Len(t, got, 1)
}

func TestDiagf(t *testing.T) {
	defer SetDiagWriter(nil)

	Diagf("dropped")
	assert.False(t, DiagEnabled())

	var buf bytes.Buffer
	SetDiagWriter(&buf)
	assert.True(t, DiagEnabled())
	Diagf("eyeBetween: %.2f", 1.5)
	assert.Contains(t, buf.String(), "[diag] ")
	assert.Contains(t, buf.String(), "eyeBetween: 1.50")
}
