// Package retrieval provides document indexing and similarity retrieval
// for grounding chat turns in supporting context.
package retrieval

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Document is a unit of text plus free-form metadata supplied as extra
// context to a model invocation. Consumers treat documents as read-only.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`
	// Content is the text content.
	Content string `json:"content"`
	// Metadata carries free-form attributes such as source URL or tags.
	Metadata map[string]any `json:"metadata,omitempty"`
	// Embedding is the vector representation of Content. Populated by the
	// indexer; may be nil for documents that have not been indexed yet.
	Embedding []float32 `json:"embedding,omitempty"`
	// Score is the similarity score, populated on retrieval results only.
	Score float32 `json:"-"`
}

// FromText creates a Document with a generated id.
func FromText(content string, metadata map[string]any) Document {
	return Document{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Content:  content,
		Metadata: metadata,
	}
}

func (d Document) clone() Document {
	clone := d
	clone.Embedding = slices.Clone(d.Embedding)
	if d.Metadata != nil {
		clone.Metadata = maps.Clone(d.Metadata)
	}
	return clone
}
