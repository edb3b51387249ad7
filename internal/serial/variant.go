package serial

import "strings"

// VariantCode derives the short variant token used in serial numbers from
// a variant descriptor: up to four alphanumerics of the category, up to four
// of the size, then S/N for stretch and F/N for framing.
//
//	VariantCode("Canvas", "24x36", true, false) == "CANV24X3SN"
func VariantCode(category, size string, stretch, framing bool) string {
	var b strings.Builder
	b.WriteString(alnumPrefix(category, 4))
	b.WriteString(alnumPrefix(size, 4))
	if stretch {
		b.WriteByte('S')
	} else {
		b.WriteByte('N')
	}
	if framing {
		b.WriteByte('F')
	} else {
		b.WriteByte('N')
	}
	return b.String()
}

// alnumPrefix uppercases s, drops everything that is not A-Z or 0-9 and
// returns at most n of the remaining characters.
func alnumPrefix(s string, n int) string {
	out := make([]byte, 0, n)
	for _, r := range strings.ToUpper(s) {
		if len(out) == n {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, byte(r))
		}
	}
	return string(out)
}
