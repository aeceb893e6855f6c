package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("[pool] grew to %d", 21)
	if got != "[pool] grew to 21" {
		t.Errorf("logged = %q, want %q", got, "[pool] grew to 21")
	}
}

func TestSetLoggerNilMutes(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	SetLogger(nil)
	// Must not panic.
	Logf("dropped %s", "message")
}
