package packet

const colorMask = 0xFFFFFF

// JoinColor packs an RGB triple into a 24-bit value.
func JoinColor(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// SplitColor unpacks a 24-bit color into its RGB channels. Bits above the
// 24-bit range are discarded.
func SplitColor(v uint32) (r, g, b uint8) {
	v &= colorMask

	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
