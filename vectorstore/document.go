package vectorstore

type Document struct {
	DocID     string         `json:"doc_id"`
	Text      string         `json:"text"`
	Meta      map[string]any `json:"meta"`
	Embedding []float32      `json:"embedding"`
}

// Source returns the provenance identifier carried in the document metadata.
func (d Document) Source() string {
	if d.Meta == nil {
		return ""
	}
	if s, ok := d.Meta["source"].(string); ok {
		return s
	}
	return ""
}

type Match struct {
	Document
	Score float64 `json:"score"`
}
