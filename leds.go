package ledbridge

import "math/bits"

// Bitmask is the 5-bit LED state of the wheel's RPM bar, ordered low to
// high RPM: bits 1-2 green, 3-4 orange, 5 red.
type Bitmask uint8

const (
	LED1 Bitmask = 1 << iota
	LED2
	LED3
	LED4
	LED5

	AllOff Bitmask = 0
	AllOn  Bitmask = LED1 | LED2 | LED3 | LED4 | LED5

	numLEDs = 5
)

// Count returns the number of lit LEDs.
func (b Bitmask) Count() int {
	return bits.OnesCount8(uint8(b))
}

// LEDMask maps a reading to the LED state. The bar activates over the top
// half of the usable rev range: below threshold = max - (max-idle)/2 all
// LEDs are off, at or above max all five are on, and in between the count
// is floor(f*5) of the fraction f covered of [threshold, max]. A reading
// exactly at threshold therefore lights nothing.
func LEDMask(r Reading) Bitmask {
	if !r.SessionActive {
		return AllOff
	}
	threshold := r.MaxRPM - (r.MaxRPM-r.IdleRPM)/2
	switch {
	case r.CurrentRPM < threshold:
		return AllOff
	case r.CurrentRPM >= r.MaxRPM:
		return AllOn
	}
	f := (r.CurrentRPM - threshold) / (r.MaxRPM - threshold)
	n := int(f * numLEDs)
	if n < 0 {
		n = 0
	} else if n > numLEDs {
		n = numLEDs
	}
	return Bitmask(1<<n - 1)
}
