package vectorstore

// Document represents a document to be stored in the vector store.
type Document struct {
	// ID is the unique identifier for the document
	ID string

	// Content is the text that is embedded and returned by searches
	Content string

	// Metadata holds string attributes such as source and data_type
	Metadata map[string]string
}

// SearchResult represents a search result from the vector store.
type SearchResult struct {
	ID      string
	Content string

	// Score is the cosine similarity to the query (higher = more similar)
	Score float32

	Metadata map[string]string
}
