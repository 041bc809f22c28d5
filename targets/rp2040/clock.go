//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"
)

// The RP2040 timer counts microseconds. Alarm 0 belongs to the TinyGo
// runtime, alarm 1 drives the frame clock and alarm 2 is the pulse one-shot.
const (
	TimerFreq = 1000000 // 1MHz

	alarmTick  = 1
	alarmPulse = 2
)

// GetHardwareTime reads the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return rp.TIMER.TIMERAWL.Get()
}

// tickAlarm is the periodic frame clock interrupt
type tickAlarm struct {
	period uint32
	next   uint32
}

var frameAlarm tickAlarm

// ArmPeriodic fires alarm 1 every period microseconds
func (a *tickAlarm) ArmPeriodic(period uint32) {
	a.period = period
	a.next = GetHardwareTime() + period

	intr := interrupt.New(rp.IRQ_TIMER_IRQ_1, func(interrupt.Interrupt) {
		rp.TIMER.INTR.Set(1 << alarmTick)
		frameAlarm.next += frameAlarm.period
		rp.TIMER.ALARM1.Set(frameAlarm.next)
		if controller != nil {
			controller.Tick()
		}
	})
	rp.TIMER.INTE.SetBits(1 << alarmTick)
	rp.TIMER.ALARM1.Set(a.next)
	intr.Enable()
}

// pulseAlarm implements core.PulseTimer on alarm 2
type pulseAlarm struct{}

var oneShot pulseAlarm

func (pulseAlarm) init() {
	intr := interrupt.New(rp.IRQ_TIMER_IRQ_2, func(interrupt.Interrupt) {
		rp.TIMER.INTR.Set(1 << alarmPulse)
		if controller != nil {
			controller.PulseExpired()
		}
	})
	rp.TIMER.INTE.SetBits(1 << alarmPulse)
	intr.Enable()
}

// ArmOneShot fires alarm 2 after ticks microseconds
func (pulseAlarm) ArmOneShot(ticks uint32) {
	rp.TIMER.ALARM2.Set(GetHardwareTime() + ticks)
}

// Disarm cancels a pending alarm 2
func (pulseAlarm) Disarm() {
	rp.TIMER.ARMED.Set(1 << alarmPulse)
	rp.TIMER.INTR.Set(1 << alarmPulse)
}
