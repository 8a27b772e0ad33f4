package domain

import "regexp"

// ForceNumberPattern matches eight digits followed by a service suffix.
var ForceNumberPattern = regexp.MustCompile(`^\d{8}(MC|MI|PE|PV)$`)

// MusteringCodes lists the codes accepted at registration.
var MusteringCodes = []string{
	"C2", "P", "PR", "SS", "T", "E",
	"MP", "L", "HR", "CH", "INT",
}

// ValidForceNumber reports whether number is a well-formed force number.
func ValidForceNumber(number string) bool {
	return ForceNumberPattern.MatchString(number)
}

// ValidMusteringCode reports whether code is a known mustering code.
func ValidMusteringCode(code string) bool {
	for _, candidate := range MusteringCodes {
		if candidate == code {
			return true
		}
	}
	return false
}
