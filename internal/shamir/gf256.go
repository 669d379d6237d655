package shamir

// Arithmetic in GF(2^8) reduced by the AES polynomial x^8 + x^4 + x^3 + x + 1,
// with 3 as the generator of the multiplicative group.

const (
	reducingPoly = 0x11b
	groupOrder   = 255
)

//nolint:gochecknoglobals // Precomputed field tables
var expTable, logTable = buildTables()

func buildTables() (exp, log [256]byte) {
	x := uint16(1)
	for i := range groupOrder {
		exp[i] = byte(x)
		log[x] = byte(i)

		// x *= 3, that is x*2 + x
		x ^= x << 1
		if x > 0xff {
			x ^= reducingPoly
		}
	}
	return exp, log
}

// add is also subtraction: both are XOR in characteristic 2.
func add(a, b byte) byte {
	return a ^ b
}

func mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[(int(logTable[a])+int(logTable[b]))%groupOrder]
}

// div returns a/b. b must be non-zero.
func div(a, b byte) byte {
	if b == 0 {
		panic("shamir: division by zero in GF(2^8)")
	}
	if a == 0 {
		return 0
	}
	return expTable[(int(logTable[a])-int(logTable[b])+groupOrder)%groupOrder]
}

// eval returns the polynomial with the given coefficients, constant term
// first, evaluated at x by Horner's rule.
func eval(coeffs []byte, x byte) byte {
	var y byte
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = add(mul(y, x), coeffs[i])
	}
	return y
}
