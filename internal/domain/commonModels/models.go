package commonModels

// Chunk is a bounded piece of extracted text. Metadata values are strings or
// numbers, no key is required.
type Chunk struct {
	Id       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type QueryResult struct {
	Id       string         `json:"id"`
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Distance float32        `json:"distance"`
}

// QueryResultSet is ordered nearest first.
type QueryResultSet []QueryResult

func (q QueryResultSet) Documents() []string {
	docs := make([]string, len(q))
	for i, r := range q {
		docs[i] = r.Document
	}
	return docs
}

// Selection is the re-ranked subset handed to generation. Indices point into
// the candidate list, in score order.
type Selection struct {
	Text    string `json:"relevant_text"`
	Indices []int  `json:"selected_indices"`
}

type CollectionInfo struct {
	Name           string `json:"name"`
	Count          int    `json:"count"`
	EmbeddingModel string `json:"embedding_model"`
	Dimension      int    `json:"dimension"`
	Space          string `json:"space"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

const CosineSpace = "cosine"
