// Package majorname parses institution-qualified major names such as
// "Computer Science at NUS" and turns them into question-bank filenames.
package majorname

import (
	"regexp"
	"strings"
	"unicode"
)

// Institution is one of the supported universities.
type Institution string

// Supported institutions.
const (
	NUS Institution = "NUS"
	NTU Institution = "NTU"
	SMU Institution = "SMU"
)

// Institutions lists every supported institution in a fixed order.
var Institutions = []Institution{NUS, NTU, SMU}

// Valid reports whether i is a supported institution.
func (i Institution) Valid() bool {
	switch i {
	case NUS, NTU, SMU:
		return true
	}
	return false
}

// ParseInstitution parses a case-insensitive institution abbreviation.
func ParseInstitution(s string) (Institution, bool) {
	inst := Institution(strings.ToUpper(strings.TrimSpace(s)))
	return inst, inst.Valid()
}

// InstitutionSuffix returns the institution named by a trailing " at NUS",
// " at NTU" or " at SMU". Other forms, including a bare trailing
// abbreviation, are not recognised.
func InstitutionSuffix(major string) (Institution, bool) {
	for _, inst := range Institutions {
		if strings.HasSuffix(major, " at "+string(inst)) {
			return inst, true
		}
	}
	return "", false
}

// StripInstitution removes a trailing " at <institution>" suffix.
func StripInstitution(major string) string {
	if inst, ok := InstitutionSuffix(major); ok {
		return strings.TrimSuffix(major, " at "+string(inst))
	}
	return major
}

// space matches Unicode separators and the BOM as well as ASCII whitespace,
// so names pasted with no-break or ideographic spaces sanitize the same way.
const space = `\s\v\p{Z}\x{FEFF}`

var (
	atSuffixPattern       = regexp.MustCompile(`(?i)^(.*?)[` + space + `]+at[` + space + `]+(\w+)$`)
	trailingAbbrevPattern = regexp.MustCompile(`^(.*?)[` + space + `]+(NUS|NTU|SMU)$`)
	nonWordPattern        = regexp.MustCompile(`[^\w` + space + `]`)
	whitespacePattern     = regexp.MustCompile(`[` + space + `]+`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Split separates a major name into its bare name and institution token.
// "X at Y" is tried first with any word as Y; otherwise a trailing NUS, NTU
// or SMU token is recognised. The institution is "" when neither applies.
func Split(major string) (name, institution string) {
	if m := atSuffixPattern.FindStringSubmatch(major); m != nil {
		return m[1], m[2]
	}
	if m := trailingAbbrevPattern.FindStringSubmatch(major); m != nil {
		return m[1], m[2]
	}
	return major, ""
}

// SanitizeToFilename maps a major name to its question-bank filename.
//
//	"Data Science at NUS" -> "Data_Science_NUS.json"
//	"Arts & Humanities"   -> "Arts_and_Humanities.json"
func SanitizeToFilename(major string) string {
	name, institution := Split(major)

	name = strings.ReplaceAll(name, "&", "and")
	name = nonWordPattern.ReplaceAllString(name, "")
	name = strings.TrimFunc(name, isSpace)
	name = whitespacePattern.ReplaceAllString(name, "_")

	if institution != "" {
		name += "_" + institution
	}
	return name + ".json"
}

// DisplayName drops the institution suffix for presentation.
func DisplayName(major string) string {
	name, _ := Split(major)
	return strings.TrimSpace(name)
}
