package core

import "escctl/protocol"

// utoa converts an unsigned integer to a string without using fmt package
func utoa(n uint32) string {
	return string(protocol.AppendDecimal(nil, n))
}
