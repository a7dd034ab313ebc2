package timex

import (
	"time"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/x/mathx"
)

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// SinceMs returns now-start, floored at zero so callers never see a
// negative elapsed time from a clock step.
func SinceMs(now, start int64) int64 {
	if now < start {
		return 0
	}
	return now - start
}

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// SymbolMsFromHz returns the millisecond symbol period for a bit rate,
// clamped to [1, 1000] ms.
func SymbolMsFromHz(rateHz uint32) uint32 {
	if rateHz == 0 {
		rateHz = 1
	}
	return mathx.Clamp(1000/rateHz, 1, 1000)
}
