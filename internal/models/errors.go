package models

import "errors"

// Stage failure taxonomy. Stages wrap these with %w and abort; there is no
// retry anywhere in the pipeline.
var (
	// ErrNotFound 输入文件不存在
	ErrNotFound = errors.New("input file not found")

	// ErrNotLoaded means a transform step ran before its load step.
	ErrNotLoaded = errors.New("dataset not loaded")

	// ErrShapeMismatch means the attribution output shape could not be
	// normalized to one per-record, per-feature churn-class vector.
	ErrShapeMismatch = errors.New("attribution shape mismatch")
)
