package main

import "testing"

func TestRandomKey(t *testing.T) {
	key := randomKey()
	if len(key) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(key))
	}
	if string(key) == string(randomKey()) {
		t.Error("two random keys should not be identical")
	}
}
