package retrieval

import "context"

// Retriever returns the documents most similar to a query text, ordered by
// descending similarity.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// Indexer makes documents available for later retrieval.
type Indexer interface {
	Index(ctx context.Context, docs []Document) error
}

// Embedder generates vector representations of text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
