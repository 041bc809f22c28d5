package core

// PulseTimer is the one-shot compare-match timer behind the Sequencer.
// Expiry must be reported back through Controller.PulseExpired (or
// Sequencer.Expire) from the timer interrupt, never from inside ArmOneShot.
type PulseTimer interface {
	// ArmOneShot restarts the timer counter and fires once after ticks
	ArmOneShot(ticks uint32)

	// Disarm disables the compare-match interrupt
	Disarm()
}

// TickTimer is the periodic timer behind the FrameClock. Once armed it must
// call Controller.Tick from its interrupt every period.
type TickTimer interface {
	// ArmPeriodic starts the periodic interrupt
	ArmPeriodic(periodUS uint32)
}
