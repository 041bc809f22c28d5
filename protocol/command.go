package protocol

import (
	"bytes"
	"errors"
	"strconv"
)

var (
	ErrNotPowerCommand = errors.New("not a power command")
	ErrBadToken        = errors.New("invalid power token")
)

// AppendPowerCommand encodes a power command for the given channel values.
// Values are written with at least two digits: "p50 00 99 25\r".
func AppendPowerCommand(dst []byte, values []uint8) []byte {
	dst = append(dst, PowerMarker)
	for i, v := range values {
		if i > 0 {
			dst = append(dst, Separator)
		}
		if v < 10 {
			dst = append(dst, '0')
		}
		dst = AppendDecimal(dst, uint32(v))
	}
	return append(dst, Terminator)
}

// ParsePowerCommand strictly decodes a power command line (with or without
// its terminator). Used by host tooling to validate what it sends; the
// firmware parser is deliberately more lenient.
func ParsePowerCommand(line []byte) ([]int, error) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 || line[0] != PowerMarker {
		return nil, ErrNotPowerCommand
	}

	fields := bytes.Split(line[1:], []byte{Separator})
	values := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return nil, ErrBadToken
		}
		values = append(values, v)
	}
	return values, nil
}

// ScanLines is a bufio.SplitFunc for firmware output. Lines end in CR,
// an optional LF after the CR is skipped.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	start := 0
	for start < len(data) && data[start] == LineFeed {
		start++
	}
	if i := bytes.IndexByte(data[start:], Terminator); i >= 0 {
		return start + i + 1, data[start : start+i], nil
	}
	if atEOF {
		if start == len(data) {
			return len(data), nil, nil
		}
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
