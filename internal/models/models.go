package models

// Chunk is one bounded segment of the source document, the unit of retrieval.
type Chunk struct {
	ID    string
	Index int
	Text  string
}

// IngestionReport summarizes a completed ingestion run.
type IngestionReport struct {
	ChunkCount  int
	VectorCount int
}

// Match is one retrieved chunk with its similarity score, highest first.
type Match struct {
	Score float32
	Text  string
}
