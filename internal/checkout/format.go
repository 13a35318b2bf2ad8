package checkout

import "strings"

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber keeps at most 16 digits and groups them by four.
// Fewer than four digits are returned ungrouped.
func FormatCardNumber(value string) string {
	v := digits(value)
	if len(v) < 4 {
		return v
	}
	if len(v) > 16 {
		v = v[:16]
	}

	parts := make([]string, 0, 4)
	for i := 0; i < len(v); i += 4 {
		end := min(i+4, len(v))
		parts = append(parts, v[i:end])
	}
	return strings.Join(parts, " ")
}

// FormatExpiryDate inserts the MM/YY slash once two digits are typed.
func FormatExpiryDate(value string) string {
	v := digits(value)
	if len(v) < 2 {
		return v
	}
	if len(v) > 4 {
		v = v[:4]
	}
	return v[:2] + "/" + v[2:]
}
