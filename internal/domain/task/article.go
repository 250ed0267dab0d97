package task

import "chatwoot/kbsync/internal/domain"

const ArticleTaskType = "ArticleTask"

type ArticleTask struct {
	Source   string               `json:"source"`   // Document the record was split from
	Position int                  `json:"position"` // Zero-based index of the record in the document
	Record   domain.ArticleRecord `json:"record"`
}

func (t *ArticleTask) TaskType() string {
	return ArticleTaskType
}

func (t *ArticleTask) TaskValue() ([]byte, error) {
	return Encode(t)
}
