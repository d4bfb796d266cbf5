package commonModels

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentParse     = errors.New("document parse failed")
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrDocumentParse)
	ErrIndexWrite        = errors.New("index write failed")
	ErrIndexRead         = errors.New("index query failed")
	ErrEmbedding         = errors.New("embedding failed")
	ErrGeneration        = errors.New("generation failed")
	ErrRerank            = errors.New("rerank failed")
)
