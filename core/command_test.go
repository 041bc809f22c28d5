package core

import (
	"errors"
	"testing"

	"escctl/protocol"
)

func TestCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	var called bool
	handler := func(src protocol.ByteSource) int {
		called = true
		return 0
	}

	if err := registry.Register('s', "status", "", handler); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	cmd, ok := registry.Lookup('s')
	if !ok {
		t.Fatal("Failed to retrieve registered command")
	}
	if cmd.Name != "status" {
		t.Errorf("Expected command name 'status', got '%s'", cmd.Name)
	}
	cmd.Handler(nil)
	if !called {
		t.Error("Command handler was not called")
	}

	if _, ok := registry.Lookup('z'); ok {
		t.Error("Expected lookup of unknown marker to fail")
	}
	if _, ok := registry.Lookup(0xff); ok {
		t.Error("Expected lookup of 8-bit marker to fail")
	}

	err := registry.Register('s', "again", "", handler)
	if !errors.Is(err, ErrDuplicateMarker) {
		t.Errorf("Expected ErrDuplicateMarker, got %v", err)
	}
	err = registry.Register('\r', "cr", "", handler)
	if !errors.Is(err, ErrInvalidMarker) {
		t.Errorf("Expected ErrInvalidMarker, got %v", err)
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 command, got %d", registry.Count())
	}
}

func TestControllerDictionary(t *testing.T) {
	c, _ := newTestController(t, Config{})

	dict := c.Registry().Dictionary()
	if dict != "p power v0 v1 ... vN-1\n" {
		t.Errorf("Unexpected dictionary %q", dict)
	}
}

func TestCustomCommandThroughPipeline(t *testing.T) {
	c, board := newTestController(t, Config{})

	err := c.Registry().Register('m', "manual", "", func(src protocol.ByteSource) int {
		c.SetManualOverride(true)
		return 0
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	send(c, "m\r")
	if !c.ManualOverride() {
		t.Error("Expected custom command to enable manual override")
	}

	board.input.value = incButton
	tickN(c, 10)
	if c.Width(0) != 10 {
		t.Errorf("Expected manual step after custom command, got %d", c.Width(0))
	}
}
