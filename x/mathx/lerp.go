package mathx

// LerpU32 returns linear interpolation between a and b, with t in [0..65535] (Q16),
// using 64-bit intermediates. Used for frequency sweeps.
func LerpU32(a, b uint32, t uint16) uint32 {
	da := int64(b) - int64(a)
	return uint32(int64(a) + (da*int64(t))/65535)
}

// Scale8 scales v by s/255 (channel brightness scaling).
func Scale8(v, s uint8) uint8 {
	return uint8((uint16(v)*uint16(s) + 127) / 255)
}
