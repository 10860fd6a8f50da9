package logic

// Wrap returns v reduced into [0, n), so that -1 maps to n-1 and n maps to 0.
// All value entry in the menus goes through Wrap, which is why no
// out-of-range configuration can ever reach the alarm registry.
func Wrap(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Step moves v one position in the direction of b within [0, n).
// Buttons other than Up and Down leave v unchanged.
func Step(v, n int, b Button) int {
	switch b {
	case ButtonUp:
		return Wrap(v+1, n)
	case ButtonDown:
		return Wrap(v-1, n)
	default:
		return v
	}
}
