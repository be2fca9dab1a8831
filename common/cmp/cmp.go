package cmp

func MaxUInt(a uint, b uint) uint {
	if a > b {
		return a
	}
	return b
}
