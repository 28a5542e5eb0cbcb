package expense

import (
	"context"
	"io"
)

type ExpenseService interface {
	Create(ctx context.Context, req CreateReportRequest) (ReportResponse, error)
	GetByID(ctx context.Context, id string) (ReportResponse, error)
	List(ctx context.Context, filter ExpenseFilter) (ListReportResponse, error)
	Update(ctx context.Context, req UpdateReportRequest) (ReportResponse, error)
	AddItem(ctx context.Context, req AddItemRequest) (ReportResponse, error)
	RemoveItem(ctx context.Context, reportID, itemID string) (ReportResponse, error)
	UploadReceipt(ctx context.Context, req UploadReceiptRequest, file io.Reader) (ItemResponse, error)
	Transition(ctx context.Context, req TransitionRequest) (ReportResponse, error)
}
