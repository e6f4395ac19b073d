package test

import (
	"fmt"
	"strings"
)

// HexDump provides a string of bytes in hex format. Printable ASCII is
// echoed after the hex so protocol traces stay readable.
func HexDump(data []byte) string {
	var hex, txt strings.Builder

	for i, b := range data {
		if i != 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02x", b)

		if b >= 0x20 && b < 0x7f {
			txt.WriteByte(b)
		} else {
			txt.WriteByte('.')
		}
	}

	if len(data) == 0 {
		return ""
	}

	return hex.String() + " |" + txt.String() + "|"
}
