package refdata

import (
	"path"

	"github.com/garyellow/programme-matcher/internal/majorname"
)

// Document keys relative to the source root.
const (
	KeyOccupations = "occupation_major_mappings.json"
	KeyPrefixMaps  = "mappings.json"

	catalogDir  = "modules"
	questionDir = "questions"
)

// Document kinds used for metrics labels.
const (
	KindOccupations = "occupations"
	KindPrefixMaps  = "prefix_maps"
	KindCatalog     = "catalog"
	KindQuestions   = "questions"
	KindSearchIndex = "search_index"
)

// CatalogKey returns the key of an institution's module catalog.
func CatalogKey(inst majorname.Institution) string {
	return path.Join(catalogDir, "Module_code_and_description_"+string(inst)+".json")
}

// QuestionKey returns the key of a question bank filename.
func QuestionKey(filename string) string {
	return path.Join(questionDir, filename)
}

// QuestionFilename reports the bank filename when key names a question bank.
func QuestionFilename(key string) (string, bool) {
	dir, file := path.Split(key)
	return file, dir == questionDir+"/" && file != ""
}
