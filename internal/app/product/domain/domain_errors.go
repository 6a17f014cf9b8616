package domain

import "errors"

// Code is the stable numeric identifier of a ledger error kind.
type Code int

const (
	CodeNotAuthorized           Code = 100
	CodeProductExists           Code = 101
	CodeProductNotFound         Code = 102
	CodeInvalidStatus           Code = 103
	CodeInvalidProductID        Code = 104
	CodeInvalidLocation         Code = 105
	CodeInvalidOwner            Code = 106
	CodeRoleExists              Code = 107
	CodeInvalidRole             Code = 108
	CodeInvalidStatusTransition Code = 109
	CodeInvalidReason           Code = 110
)

var codeNames = map[Code]string{
	CodeNotAuthorized:           "NOT_AUTHORIZED",
	CodeProductExists:           "PRODUCT_EXISTS",
	CodeProductNotFound:         "PRODUCT_NOT_FOUND",
	CodeInvalidStatus:           "INVALID_STATUS",
	CodeInvalidProductID:        "INVALID_PRODUCT_ID",
	CodeInvalidLocation:         "INVALID_LOCATION",
	CodeInvalidOwner:            "INVALID_OWNER",
	CodeRoleExists:              "ROLE_EXISTS",
	CodeInvalidRole:             "INVALID_ROLE",
	CodeInvalidStatusTransition: "INVALID_STATUS_TRANSITION",
	CodeInvalidReason:           "INVALID_REASON",
}

// String returns the upper-snake name of the code, e.g. "PRODUCT_EXISTS".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Error is a tagged ledger error. Two errors match under errors.Is when their codes are equal.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Domain errors as sentinel values
var (
	// Authorization errors
	ErrNotAuthorized = &Error{Code: CodeNotAuthorized, Message: "caller is not authorized"}

	// Product errors
	ErrProductExists   = &Error{Code: CodeProductExists, Message: "product already registered"}
	ErrProductNotFound = &Error{Code: CodeProductNotFound, Message: "product not found"}

	// Input errors
	ErrInvalidProductID = &Error{Code: CodeInvalidProductID, Message: "product id must be 1-36 characters"}
	ErrInvalidLocation  = &Error{Code: CodeInvalidLocation, Message: "location must be 1-50 characters"}
	ErrInvalidReason    = &Error{Code: CodeInvalidReason, Message: "reason must be 1-50 characters"}

	// Status errors
	ErrInvalidStatus           = &Error{Code: CodeInvalidStatus, Message: "unknown product status"}
	ErrInvalidStatusTransition = &Error{Code: CodeInvalidStatusTransition, Message: "status transition not allowed"}

	// Role and ownership errors
	ErrInvalidOwner = &Error{Code: CodeInvalidOwner, Message: "invalid owner identity"}
	ErrRoleExists   = &Error{Code: CodeRoleExists, Message: "identity already holds this role"}
	ErrInvalidRole  = &Error{Code: CodeInvalidRole, Message: "role cannot be assigned"}
)

// Lookup misses outside the numbered taxonomy.
var (
	ErrHistoryEntryNotFound = errors.New("status history entry not found")
	ErrAuditEntryNotFound   = errors.New("audit entry not found")
	ErrRoleNotAssigned      = errors.New("no role assigned to identity")
	ErrOwnerNotSet          = errors.New("ledger owner has not been bootstrapped")
)

// CodeOf extracts the ledger code from err, if it carries one.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return 0, false
}
