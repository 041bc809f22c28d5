//go:build linux && !tinygo

package main

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestParseOffsets(t *testing.T) {
	offsets, err := parseOffsets("17, 27,22")
	if err != nil {
		t.Fatalf("parseOffsets failed: %v", err)
	}
	if len(offsets) != 3 || offsets[0] != 17 || offsets[2] != 22 {
		t.Errorf("Expected [17 27 22], got %v", offsets)
	}

	if _, err := parseOffsets("17,x"); err == nil {
		t.Error("Expected error for invalid offset")
	}
}

func TestSoftOneShotRearm(t *testing.T) {
	var fired atomic.Int32
	timer := &softOneShot{expire: func(current func() bool) {
		if current() {
			fired.Add(1)
		}
	}}

	timer.ArmOneShot(50000)
	timer.ArmOneShot(1000) // Replaces the first
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("Expected 1 expiry, got %d", fired.Load())
	}

	timer.ArmOneShot(1000)
	timer.Disarm()
	time.Sleep(20 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("Expected disarmed timer not to fire, got %d", fired.Load())
	}
}

func TestSoftOneShotStaleGeneration(t *testing.T) {
	var fired atomic.Int32
	timer := &softOneShot{expire: func(current func() bool) {
		if current() {
			fired.Add(1)
		}
	}}

	timer.ArmOneShot(1000000)
	stale := timer.gen
	timer.ArmOneShot(1000000)
	defer timer.Disarm()

	// A callback of the first arm that was already running when re-armed
	timer.expire(func() bool { return timer.current(stale) })
	if fired.Load() != 0 {
		t.Errorf("Expected stale expiry to be ignored, got %d", fired.Load())
	}

	timer.expire(func() bool { return timer.current(timer.gen) })
	if fired.Load() != 1 {
		t.Errorf("Expected current expiry to fire, got %d", fired.Load())
	}
}

func TestUARTTxDropsWhenFull(t *testing.T) {
	tx := newUARTTx()
	for i := 0; i < 100; i++ {
		tx.TransmitByte(byte(i))
	}
	if len(tx.ch) != cap(tx.ch) {
		t.Errorf("Expected full channel, got %d", len(tx.ch))
	}
}
