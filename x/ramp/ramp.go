// Package ramp provides elapsed-time interpolation helpers for the modem
// pattern generators and the stimulus engine. Everything is computed from an
// absolute elapsed value, never from accumulated steps, so output position is
// independent of how often the caller ticks.
package ramp

import (
	"math"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/mathx"
)

// Progress maps elapsed within [0, total) to Q16 [0..65535].
// total==0 returns 65535 (ramp already complete).
func Progress(elapsedMs, totalMs uint32) uint16 {
	if totalMs == 0 || elapsedMs >= totalMs {
		return 65535
	}
	return uint16((uint64(elapsedMs) * 65535) / uint64(totalMs))
}

// Triangle maps elapsed within a period to a Q16 value that rises over the
// first half and falls over the second (pulse/breathing shapes).
func Triangle(elapsedMs, periodMs uint32) uint16 {
	if periodMs == 0 {
		return 0
	}
	pos := elapsedMs % periodMs
	half := periodMs / 2
	if half == 0 {
		return 0
	}
	if pos < half {
		return Progress(pos, half)
	}
	return 65535 - Progress(pos-half, half)
}

// Linear interpolates lo..hi by Q16 progress.
func Linear(lo, hi uint32, q16 uint16) uint32 {
	return mathx.LerpU32(lo, hi, q16)
}

// Expo interpolates lo..hi on a logarithmic scale:
// exp(log(lo) + t*(log(hi)-log(lo))). Used by the acoustic chirp so equal
// time covers equal musical intervals. lo and hi must be >0; if not, falls
// back to Linear.
func Expo(lo, hi uint32, q16 uint16) uint32 {
	if lo == 0 || hi == 0 {
		return Linear(lo, hi, q16)
	}
	t := float64(q16) / 65535
	logLo := math.Log(float64(lo))
	logHi := math.Log(float64(hi))
	return uint32(math.Exp(logLo + t*(logHi-logLo)))
}
