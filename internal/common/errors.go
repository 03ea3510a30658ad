package common

import "errors"

// Error taxonomy shared by every stage of a query invocation.
// Callers wrap these with context and test with errors.Is.
var (
	ErrInvalidArguments   = errors.New("invalid arguments")
	ErrInvalidQuerySyntax = errors.New("invalid query syntax")
	ErrFileNotFound       = errors.New("file not found")
	ErrIO                 = errors.New("i/o error")
	ErrEmptyFile          = errors.New("empty file")
	ErrParse              = errors.New("parse error")
	ErrUTF8Decode         = errors.New("invalid utf-8")
)
