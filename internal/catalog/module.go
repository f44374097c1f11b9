// Package catalog models institution course modules, the prefix tables that
// tie course codes to majors, and keyword search over a catalog.
package catalog

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/garyellow/programme-matcher/internal/majorname"
)

// Module is a single enrollable course. Units and Semester are only known
// for modules synced from the course database.
type Module struct {
	ID          int64                 `json:"id"`
	Code        string                `json:"modulecode"`
	Title       string                `json:"title"`
	Institution majorname.Institution `json:"institution"`
	Description string                `json:"description"`
	Units       *float64              `json:"aus_cus,omitempty"`
	Semester    string                `json:"semester,omitempty"`
}

// CatalogEntry is a record of a per-institution catalog file.
type CatalogEntry struct {
	ID          int64  `json:"id,omitempty"`
	ModuleCode  string `json:"modulecode"`
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Description string `json:"description"`
}

// SyncedModule is a module row from the course database.
type SyncedModule struct {
	ID          int64    `json:"id"`
	University  string   `json:"university"`
	CourseCode  string   `json:"course_code"`
	Title       string   `json:"title"`
	Units       *float64 `json:"aus_cus"`
	Semester    string   `json:"semester"`
	Description string   `json:"description"`
}

// DefaultDescription fills modules that arrive without a description.
const DefaultDescription = "No description available."

// FromCatalogEntry converts a catalog record. The file's institution column is
// unreliable, so the institution the file belongs to is passed in.
func FromCatalogEntry(e CatalogEntry, inst majorname.Institution) Module {
	code := strings.TrimSpace(e.ModuleCode)
	id := e.ID
	if id == 0 {
		id = ModuleID(code)
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = DefaultDescription
	}
	return Module{
		ID:          id,
		Code:        code,
		Title:       strings.TrimSpace(e.Title),
		Institution: inst,
		Description: desc,
	}
}

// FromSyncedModule converts a database row.
func FromSyncedModule(s SyncedModule) Module {
	inst, _ := majorname.ParseInstitution(s.University)
	code := strings.TrimSpace(s.CourseCode)
	id := s.ID
	if id == 0 {
		id = ModuleID(code)
	}
	desc := strings.TrimSpace(s.Description)
	if desc == "" {
		desc = DefaultDescription
	}
	return Module{
		ID:          id,
		Code:        code,
		Title:       strings.TrimSpace(s.Title),
		Institution: inst,
		Description: desc,
		Units:       s.Units,
		Semester:    s.Semester,
	}
}

// ModuleID derives a stable non-negative id from a module code using the
// 31-multiplier string hash over UTF-16 code units, wrapped to 32 bits.
func ModuleID(code string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(code)) {
		h = h<<5 - h + int32(u)
	}
	id := int64(h)
	if id < 0 {
		id = -id
	}
	return id
}

// OtherPrefix groups codes that do not start with capital letters.
const OtherPrefix = "OTHER"

var codePrefixPattern = regexp.MustCompile(`^[A-Z]+`)

// CodePrefix returns the leading capital letters of a module code.
func CodePrefix(code string) string {
	if p := codePrefixPattern.FindString(strings.TrimSpace(code)); p != "" {
		return p
	}
	return OtherPrefix
}
