// Package crc16 implements CRC-16/MODBUS: reflected polynomial 0xA001, init
// 0xFFFF, no final xor (ARC shares the polynomial but starts from 0x0000).
// Bit-at-a-time, table-free, so nothing lands in flash beyond the code.
//
// This is the one CRC definition for both the optical and acoustic framers.
package crc16

// Init is the starting register value.
const Init uint16 = 0xFFFF

// Update folds p into crc.
func Update(crc uint16, p []byte) uint16 {
	for _, b := range p {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// Checksum returns the CRC of p from the standard init value.
func Checksum(p []byte) uint16 {
	return Update(Init, p)
}
