package domain

import "errors"

var (
	// ErrEmptyQuestion signals a missing or blank question.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrInvalidDocument signals a document missing required fields.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDocumentExists signals a duplicate document URL.
	ErrDocumentExists = errors.New("document already exists")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationQuota signals a quota/capacity-class generation failure.
	// This class is recovered by switching to the fallback answer.
	ErrGenerationQuota = errors.New("generation quota exhausted")
	// ErrGenerationFailed signals any other generation failure.
	ErrGenerationFailed = errors.New("generation failed")
)
