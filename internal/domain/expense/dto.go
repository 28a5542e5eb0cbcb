package expense

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

const (
	MaxReceiptSize = 5 << 20
)

var ReceiptContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

type CreateItemRequest struct {
	Date        string `json:"date" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required,max=500"`
	Amount      int64  `json:"amount" validate:"gt=0"`
}

type CreateReportRequest struct {
	Title    string              `json:"title" validate:"required,max=255"`
	Currency string              `json:"currency" validate:"omitempty,len=3"`
	Items    []CreateItemRequest `json:"items" validate:"omitempty,max=100,dive"`
}

func (r *CreateReportRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = "CLP"
	}

	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	for i := range r.Items {
		validateItemFields(&errs, "items["+validator.Itoa(i)+"].", r.Items[i])
	}
	return errs.OrNil()
}

type UpdateReportRequest struct {
	ID    string  `json:"-"`
	Title *string `json:"title" validate:"omitempty,min=1,max=255"`
}

func (r *UpdateReportRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.Title == nil {
		errs.Add("title", "title is required")
	}
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	return errs.OrNil()
}

type AddItemRequest struct {
	ReportID string `json:"-"`
	CreateItemRequest
}

func (r *AddItemRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ReportID) {
		errs.Add("report_id", "report_id must be a valid UUID")
	}
	if err := validator.Struct(r.CreateItemRequest); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	validateItemFields(&errs, "", r.CreateItemRequest)
	return errs.OrNil()
}

func validateItemFields(errs *validator.ValidationErrors, prefix string, it CreateItemRequest) {
	if it.Date != "" {
		if _, ok := validator.IsValidDate(it.Date); !ok {
			errs.Add(prefix+"date", "invalid date format, use YYYY-MM-DD")
		}
	}
	if it.Category != "" && !validator.IsInSlice(it.Category, CategoryValues) {
		errs.Add(prefix+"category", "category must be one of: "+strings.Join(CategoryValues, ", "))
	}
}

// ToItem converts a validated request.
func (r CreateItemRequest) ToItem(reportID string) Item {
	d, _ := validator.IsValidDate(r.Date)
	return Item{
		ReportID:    reportID,
		Date:        d,
		Category:    r.Category,
		Description: strings.TrimSpace(r.Description),
		Amount:      r.Amount,
	}
}

type UploadReceiptRequest struct {
	ReportID    string
	ItemID      string
	ContentType string
	Size        int64
}

func (r *UploadReceiptRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ReportID) {
		errs.Add("report_id", "report_id must be a valid UUID")
	}
	if !validator.IsValidUUID(r.ItemID) {
		errs.Add("item_id", "item_id must be a valid UUID")
	}
	if len(errs) > 0 {
		return errs
	}
	if r.Size > MaxReceiptSize {
		return ErrReceiptTooLarge
	}
	if _, ok := ReceiptContentTypes[r.ContentType]; !ok {
		return ErrReceiptType
	}
	return nil
}

type TransitionRequest struct {
	ID               string     `json:"-"`
	Transition       Transition `json:"-"`
	Reason           string     `json:"reason"`
	PaymentReference string     `json:"payment_reference"`
}

func (r *TransitionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if _, ok := transitions[r.Transition]; !ok {
		errs.Add("transition", "unknown transition")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	r.PaymentReference = strings.TrimSpace(r.PaymentReference)
	if r.Transition == TransitionReject && r.Reason == "" {
		errs.Add("reason", "reason is required when rejecting")
	}
	if r.Transition == TransitionPay && r.PaymentReference == "" {
		errs.Add("payment_reference", "payment_reference is required when paying")
	}
	return errs.OrNil()
}

type ExpenseFilter struct {
	Status      *string
	RequesterID *string
	Page        int
	Limit       int
}

func (f *ExpenseFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if f.RequesterID != nil && !validator.IsValidUUID(*f.RequesterID) {
		errs.Add("requester_id", "requester_id must be a valid UUID")
	}
	return errs.OrNil()
}

type ItemResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      int64   `json:"amount"`
	ReceiptURL  *string `json:"receipt_url,omitempty"`
}

type ReportResponse struct {
	ID               string         `json:"id"`
	RequesterID      string         `json:"requester_id"`
	Title            string         `json:"title"`
	Status           string         `json:"status"`
	Currency         string         `json:"currency"`
	TotalAmount      int64          `json:"total_amount"`
	SubmittedAt      *string        `json:"submitted_at,omitempty"`
	ReviewedBy       *string        `json:"reviewed_by,omitempty"`
	ReviewedAt       *string        `json:"reviewed_at,omitempty"`
	ApprovedBy       *string        `json:"approved_by,omitempty"`
	ApprovedAt       *string        `json:"approved_at,omitempty"`
	RejectedBy       *string        `json:"rejected_by,omitempty"`
	RejectedAt       *string        `json:"rejected_at,omitempty"`
	RejectionReason  *string        `json:"rejection_reason,omitempty"`
	PaidAt           *string        `json:"paid_at,omitempty"`
	PaymentReference *string        `json:"payment_reference,omitempty"`
	Items            []ItemResponse `json:"items"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
}

// NewReportResponse renders r; receiptURL maps a stored receipt key to a public address.
func NewReportResponse(r Report, receiptURL func(string) string) ReportResponse {
	items := make([]ItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, NewItemResponse(it, receiptURL))
	}
	return ReportResponse{
		ID:               r.ID,
		RequesterID:      r.RequesterID,
		Title:            r.Title,
		Status:           string(r.Status),
		Currency:         r.Currency,
		TotalAmount:      r.TotalAmount,
		SubmittedAt:      formatTime(r.SubmittedAt),
		ReviewedBy:       r.ReviewedBy,
		ReviewedAt:       formatTime(r.ReviewedAt),
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       formatTime(r.ApprovedAt),
		RejectedBy:       r.RejectedBy,
		RejectedAt:       formatTime(r.RejectedAt),
		RejectionReason:  r.RejectionReason,
		PaidAt:           formatTime(r.PaidAt),
		PaymentReference: r.PaymentReference,
		Items:            items,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
}

func NewItemResponse(it Item, receiptURL func(string) string) ItemResponse {
	resp := ItemResponse{
		ID:          it.ID,
		Date:        it.Date.Format("2006-01-02"),
		Category:    it.Category,
		Description: it.Description,
		Amount:      it.Amount,
	}
	if it.ReceiptPath != nil && receiptURL != nil {
		u := receiptURL(*it.ReceiptPath)
		resp.ReceiptURL = &u
	}
	return resp
}

type ListReportResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Reports    []ReportResponse `json:"reports"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
