package protocol

// Decimal number limits (signed 16-bit, as the firmware stores them)
const (
	MaxDecimal = 32767
	MinDecimal = -32768
)

// ByteSource is a byte stream with single byte push-back
type ByteSource interface {
	// Next returns the next byte, waiting for it if needed
	Next() byte

	// PutBack puts back the byte just read
	PutBack(b byte)
}

// ReadDecimal reads an optionally negative decimal number ending in a
// non-digit. The terminating byte is pushed back. A number without digits
// reads as 0. Values beyond the signed 16-bit range saturate.
func ReadDecimal(src ByteSource) int {
	neg := false
	ch := src.Next()
	if ch == '-' {
		neg = true
		ch = src.Next()
	}

	v := 0
	for isDigit(ch) {
		v = v*10 + int(ch-'0')
		if v > MaxDecimal+1 {
			v = MaxDecimal + 1
		}
		ch = src.Next()
	}
	src.PutBack(ch)

	if neg {
		v = -v
		if v < MinDecimal {
			v = MinDecimal
		}
	} else if v > MaxDecimal {
		v = MaxDecimal
	}
	return v
}

// AppendDecimal appends the decimal text of v to dst
func AppendDecimal(dst []byte, v uint32) []byte {
	if v == 0 {
		return append(dst, '0')
	}

	var buf [10]byte
	pos := len(buf)
	for v > 0 {
		pos--
		buf[pos] = byte('0' + v%10)
		v /= 10
	}
	return append(dst, buf[pos:]...)
}

// isDigit checks if a byte is an ASCII digit
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
