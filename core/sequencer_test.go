package core

import "testing"

func newTestSequencer(values ...uint8) (*Sequencer, *ChannelWidths, *mockOutputs, *mockTimer) {
	widths := NewChannelWidths(len(values))
	for i, v := range values {
		widths.Set(i, v)
	}
	out := &mockOutputs{}
	timer := &mockTimer{}
	seq := NewSequencer(widths, NewPulseTiming(DefaultPulseTickFreq, DefaultPulseBaseTicks, DefaultMaxValue), out, timer)
	return seq, widths, out, timer
}

func TestSequencerStates(t *testing.T) {
	if !Idle().IsIdle() {
		t.Error("Idle() should be idle")
	}
	if ch, ok := Active(3).Channel(); !ok || ch != 3 {
		t.Errorf("Expected Active(3), got %v", Active(3))
	}
	if Active(2).String() != "active(2)" || Idle().String() != "idle" {
		t.Errorf("Unexpected state names %q %q", Active(2), Idle())
	}
}

func TestSequencerFrame(t *testing.T) {
	seq, _, out, timer := newTestSequencer(10, 20, 30, 40)

	seq.Start()
	if ch, ok := seq.State().Channel(); !ok || ch != 0 {
		t.Fatalf("Expected Active(0) after Start, got %v", seq.State())
	}

	for i := 0; i < 4; i++ {
		if out.highCount() != 1 || !out.high[i] {
			t.Fatalf("Expected only channel %d high, got %v", i, out.high)
		}
		seq.Expire()
	}

	if !seq.State().IsIdle() {
		t.Errorf("Expected idle after last channel, got %v", seq.State())
	}
	if out.highCount() != 0 {
		t.Errorf("Expected all outputs low, got %v", out.high)
	}
	if out.maxHigh != 1 {
		t.Errorf("Expected at most one output high, saw %d", out.maxHigh)
	}

	want := []uint32{2600, 2700, 2800, 2900}
	if len(timer.armed) != len(want) {
		t.Fatalf("Expected %d arms, got %d", len(want), len(timer.armed))
	}
	for i, ticks := range want {
		if timer.armed[i] != ticks {
			t.Errorf("Channel %d: expected %d ticks, got %d", i, ticks, timer.armed[i])
		}
		if seq.ArmedTicks(i) != ticks {
			t.Errorf("ArmedTicks(%d): expected %d, got %d", i, ticks, seq.ArmedTicks(i))
		}
	}
	if timer.disarmed != 1 || timer.running {
		t.Errorf("Expected timer disarmed once at frame end, got %d", timer.disarmed)
	}
}

func TestSequencerLatchesAtArmTime(t *testing.T) {
	seq, widths, _, timer := newTestSequencer(0, 0)

	seq.Start()
	widths.Set(0, 100) // mid-pulse update of the active channel
	widths.Set(1, 50)  // update before channel 1 is armed
	seq.Expire()
	seq.Expire()

	if timer.armed[0] != 2500 {
		t.Errorf("Channel 0 pulse must keep its armed width, got %d", timer.armed[0])
	}
	if timer.armed[1] != 3000 {
		t.Errorf("Channel 1 should pick up the new width, got %d", timer.armed[1])
	}

	seq.Start()
	if timer.armed[2] != 3500 {
		t.Errorf("Next frame should use the new channel 0 width, got %d", timer.armed[2])
	}
}

func TestSequencerOverrun(t *testing.T) {
	seq, _, out, _ := newTestSequencer(1, 2, 3)

	seq.Start()
	seq.Expire() // channel 1 active
	seq.Start()

	if out.highCount() != 1 || !out.high[0] {
		t.Errorf("Restart must leave only channel 0 high, got %v", out.high)
	}
	if seq.Overruns() != 1 {
		t.Errorf("Expected 1 overrun, got %d", seq.Overruns())
	}
	if seq.Frames() != 2 {
		t.Errorf("Expected 2 frames, got %d", seq.Frames())
	}
}

func TestSequencerSpuriousExpire(t *testing.T) {
	seq, _, out, timer := newTestSequencer(1)

	seq.Expire()
	if len(out.deasserts) != 0 {
		t.Error("Idle expiry must not touch the outputs")
	}
	if timer.disarmed != 1 {
		t.Errorf("Idle expiry should disarm the timer, got %d", timer.disarmed)
	}
}

func TestSequencerStaleExpireAfterOverrun(t *testing.T) {
	seq, _, out, timer := newTestSequencer(1, 2, 3)

	seq.Start()
	seq.Expire() // channel 1 armed
	stale := len(timer.armed)
	seq.Start() // overrun re-arms channel 0

	current := func(arm int) func() bool {
		return func() bool { return len(timer.armed) == arm }
	}

	// Expiry of the channel 1 pulse arriving after the re-arm
	seq.ExpireIf(current(stale))
	if ch, ok := seq.State().Channel(); !ok || ch != 0 {
		t.Fatalf("Stale expiry must not end the new pulse, got %v", seq.State())
	}
	if !out.high[0] {
		t.Error("Expected channel 0 still high")
	}

	seq.ExpireIf(current(len(timer.armed)))
	if ch, ok := seq.State().Channel(); !ok || ch != 1 {
		t.Errorf("Expected current expiry to advance to channel 1, got %v", seq.State())
	}
}
