package mathx

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// DivMod returns a/b and a%b, so q*b + r == a.
// b == 0 yields (0, a): nothing divides out and everything is left over.
func DivMod[T unsigned](a, b T) (q, r T) {
	if b == 0 {
		return 0, a
	}
	return a / b, a % b
}

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
func RoundDiv[T unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
