package domain

import "strconv"

// KnowledgeDocument is a retrieved reference passage used as prompt context.
// Documents are ephemeral per call and never persisted.
type KnowledgeDocument struct {
	Content       string  `json:"content"`
	ContentLength int     `json:"contentLength"`
	Source        string  `json:"source"`
	Score         float64 `json:"score,omitempty"`
}

// NewKnowledgeDocument builds a document, naming it "Document N" (1-based)
// when the collaborator did not report a source.
func NewKnowledgeDocument(content, source string, score float64, index int) KnowledgeDocument {
	if source == "" {
		source = "Document " + strconv.Itoa(index+1)
	}
	return KnowledgeDocument{
		Content:       content,
		ContentLength: len(content),
		Source:        source,
		Score:         score,
	}
}

// Sources returns the source identifiers of docs in order.
func Sources(docs []KnowledgeDocument) []string {
	if len(docs) == 0 {
		return nil
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Source
	}
	return out
}

// TotalContentLength sums ContentLength across docs for logging.
func TotalContentLength(docs []KnowledgeDocument) int {
	total := 0
	for _, d := range docs {
		total += d.ContentLength
	}
	return total
}
