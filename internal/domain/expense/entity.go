package expense

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusReviewed  Status = "reviewed"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

var StatusValues = []string{
	string(StatusDraft),
	string(StatusSubmitted),
	string(StatusReviewed),
	string(StatusApproved),
	string(StatusPaid),
	string(StatusRejected),
	string(StatusCancelled),
}

var CategoryValues = []string{"transport", "meals", "lodging", "uniforms", "equipment", "fuel", "other"}

// Report is a rendición: a reimbursement claim grouping receipts.
type Report struct {
	ID               string
	TenantID         string
	RequesterID      string
	Title            string
	Status           Status
	TotalAmount      int64 // minor units
	Currency         string
	SubmittedAt      *time.Time
	ReviewedBy       *string
	ReviewedAt       *time.Time
	ApprovedBy       *string
	ApprovedAt       *time.Time
	RejectedBy       *string
	RejectedAt       *time.Time
	RejectionReason  *string
	PaidBy           *string
	PaidAt           *time.Time
	PaymentReference *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items []Item
}

type Item struct {
	ID          string
	ReportID    string
	Date        time.Time
	Category    string
	Description string
	Amount      int64
	ReceiptPath *string
	CreatedAt   time.Time
}

// IsEditable reports whether items and header may still change.
func (r Report) IsEditable() bool {
	return r.Status == StatusDraft
}

func (r Report) ComputeTotal() int64 {
	var total int64
	for _, it := range r.Items {
		total += it.Amount
	}
	return total
}
