package service

import "errors"

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrSummaryFailed   = errors.New("summary generation failed")
	ErrPollExhausted   = errors.New("summary still in progress")
	ErrNoRunSelected   = errors.New("no run selected")
	ErrRunNotFound     = errors.New("run not found")
	ErrAmbiguousRun    = errors.New("ambiguous run id")
	ErrNoAssignments   = errors.New("no final assignments saved")
	ErrNoUsers         = errors.New("no assignable users")
)
