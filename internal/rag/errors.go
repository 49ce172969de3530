package rag

import "fmt"

// Pipeline stages, used to attribute failures in operator logs.
const (
	StageClassify = "classify"
	StageMeta     = "meta_answer"
	StageEmbed    = "embed_question"
	StageRetrieve = "retrieve"
	StageGenerate = "grounded_generation"
)

// StageError attributes a failure to one pipeline stage. It never crosses
// the public Answer boundary; callers there receive a fixed apology string.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
