package catalog

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/stringutil"
)

// PrefixMaps holds, per institution, the course-code prefix to major table.
type PrefixMaps map[majorname.Institution]map[string]string

// prefixMapsFile is the on-disk layout of the prefix tables.
type prefixMapsFile struct {
	NUS map[string]string `json:"nus_prefix_to_major"`
	NTU map[string]string `json:"ntu_prefix_to_major"`
	SMU map[string]string `json:"smu_prefix_to_major"`
}

// UnmarshalJSON decodes the institution-keyed file layout.
func (p *PrefixMaps) UnmarshalJSON(data []byte) error {
	var f prefixMapsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = PrefixMaps{
		majorname.NUS: f.NUS,
		majorname.NTU: f.NTU,
		majorname.SMU: f.SMU,
	}
	return nil
}

// MarshalJSON encodes the institution-keyed file layout.
func (p PrefixMaps) MarshalJSON() ([]byte, error) {
	return json.Marshal(prefixMapsFile{
		NUS: p[majorname.NUS],
		NTU: p[majorname.NTU],
		SMU: p[majorname.SMU],
	})
}

// PrefixesForMajor returns every prefix of inst whose major equals major
// under case folding, sorted for a stable order.
func (p PrefixMaps) PrefixesForMajor(inst majorname.Institution, major string) []string {
	want := stringutil.Fold(major)
	var prefixes []string
	for prefix, mapped := range p[inst] {
		if stringutil.Fold(mapped) == want {
			prefixes = append(prefixes, prefix)
		}
	}
	slices.Sort(prefixes)
	return prefixes
}

// MatchPrefixes returns up to limit modules, in catalog order, whose code
// starts with any of prefixes. Codes and prefixes are compared trimmed and
// upper-cased. A non-positive limit returns every match.
func MatchPrefixes(modules []Module, prefixes []string, limit int) []Module {
	normalized := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = stringutil.NormalizeCode(p); p != "" {
			normalized = append(normalized, p)
		}
	}
	if len(normalized) == 0 {
		return nil
	}

	var out []Module
	for _, m := range modules {
		code := stringutil.NormalizeCode(m.Code)
		if !slices.ContainsFunc(normalized, func(p string) bool { return strings.HasPrefix(code, p) }) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
