package traitcode

import "strings"

// AxisMapper maps a component label to its code token, or "" when unknown.
type AxisMapper func(component string) string

var riasecTokens = map[string]string{
	"realistic":     "R",
	"investigative": "I",
	"artistic":      "A",
	"social":        "S",
	"enterprising":  "E",
	"conventional":  "C",
}

var workValueTokens = map[string]string{
	"achievement":        "A",
	"relationships":      "R",
	"independence":       "I",
	"recognition":        "Rc",
	"working conditions": "W",
	"support":            "S",
	"altruism":           "Al",
}

// RIASECToken accepts either a single letter (R, I, A, S, E, C) or the full
// interest name and returns its letter.
func RIASECToken(component string) string {
	c := strings.TrimSpace(component)
	if len(c) == 1 {
		up := strings.ToUpper(c)
		if strings.Contains("RIASEC", up) {
			return up
		}
		return ""
	}
	return riasecTokens[strings.ToLower(c)]
}

// WorkValueToken accepts a work-value name or one of its tokens
// (A, R, I, Rc, W, S, Al) and returns the token.
func WorkValueToken(component string) string {
	c := strings.TrimSpace(component)
	if tok, ok := workValueTokens[strings.ToLower(c)]; ok {
		return tok
	}
	for _, tok := range workValueTokens {
		if c == tok {
			return tok
		}
	}
	return ""
}
