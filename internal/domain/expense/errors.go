package expense

import "errors"

var (
	ErrReportNotFound           = errors.New("expense report not found")
	ErrItemNotFound             = errors.New("expense item not found")
	ErrInvalidTransition        = errors.New("invalid expense status transition")
	ErrNotEditable              = errors.New("expense report can only be changed while in draft")
	ErrNoItems                  = errors.New("expense report must have at least one item")
	ErrNotOwner                 = errors.New("only the requester can perform this action")
	ErrSelfApproval             = errors.New("requester cannot review, approve or pay their own report")
	ErrReasonRequired           = errors.New("rejection reason is required")
	ErrPaymentReferenceRequired = errors.New("payment reference is required")
	ErrReceiptTooLarge          = errors.New("receipt exceeds maximum size")
	ErrReceiptType              = errors.New("receipt must be a JPEG, PNG or PDF file")
)
