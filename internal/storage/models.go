package storage

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 10
)

// ModuleRating is a user's 1 to 10 score for one module.
type ModuleRating struct {
	UserID       string `json:"userId"`
	ModuleID     int64  `json:"moduleId"`
	ModuleCode   string `json:"moduleCode"`
	ModulePrefix string `json:"modulePrefix"`
	Institution  string `json:"institution"`
	Rating       int    `json:"rating"`
	RatedAt      int64  `json:"ratedAt"`
}

// ModuleSelection is one entry of a user's saved final selection.
type ModuleSelection struct {
	UserID      string `json:"userId"`
	ModuleID    int64  `json:"moduleId"`
	ModuleCode  string `json:"moduleCode"`
	Institution string `json:"institution"`
	Title       string `json:"title"`
	Reason      string `json:"reason"`
	SelectedAt  int64  `json:"selectedAt"`
}
