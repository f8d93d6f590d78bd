package model

// Tag is a free-text label with a unique name. Tags are shared across
// questions through QuestionTag join rows and are never garbage-collected
// when the last link is removed.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuestionTag links one question to one tag.
//
// TagName is denormalized into the record by the repository's join query
// so that tag diffing on edit can compare names without a lookup per row.
type QuestionTag struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	TagID      string `json:"tagId"`
	TagName    string `json:"tagName"`
}
