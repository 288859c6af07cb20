package queryparser

import "github.com/shinydb/shinydb-go/internal/errors"

// Parser error codes — a closed set distinct from the transport/client
// codes in internal/errors/codes.go (spec §4.10).
const (
	ErrUnexpectedToken    errors.Code = "UnexpectedToken"
	ErrExpectedIdentifier errors.Code = "ExpectedIdentifier"
	ErrExpectedOperator   errors.Code = "ExpectedOperator"
	ErrExpectedValue      errors.Code = "ExpectedValue"
	ErrExpectedLParen     errors.Code = "ExpectedLParen"
	ErrExpectedRParen     errors.Code = "ExpectedRParen"
	ErrExpectedComma      errors.Code = "ExpectedComma"
	ErrExpectedColon      errors.Code = "ExpectedColon"
	ErrInvalidNumber      errors.Code = "InvalidNumber"
	ErrUnknownOperation   errors.Code = "UnknownOperation"
)
