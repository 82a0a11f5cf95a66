package service

import "errors"

// ErrBaseBranchRequired indicates a blank base branch argument.
var ErrBaseBranchRequired = errors.New("base branch is required")
