package graphconfig

import "testing"

func TestDefaultIsZeroPolicy(t *testing.T) {
	c := Default()
	if c.SkipEvictions || c.Debug || c.Abort || c.Endure {
		t.Fatalf("expected Default to carry no opaque flags, got %+v", c)
	}
}

func TestDebugSkipsEvictions(t *testing.T) {
	c := Debug()
	if !c.SkipEvictions || !c.Debug {
		t.Fatalf("expected Debug preset to skip evictions and enable debug logging, got %+v", c)
	}
}

func TestValidateRejectsConflictingFailurePolicy(t *testing.T) {
	c := &Config{Abort: true, Endure: true}
	if err := c.Validate(); err != ErrConflictingFailurePolicy {
		t.Fatalf("expected ErrConflictingFailurePolicy, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := Strict()
	clone := c.Clone()
	clone.Abort = false
	if !c.Abort {
		t.Fatalf("expected mutating the clone not to affect the original")
	}
}
