package expense

import "context"

type ExpenseRepository interface {
	Create(ctx context.Context, report Report) (Report, error)
	// GetByID loads the report with its items.
	GetByID(ctx context.Context, id, tenantID string) (Report, error)
	// GetForUpdate locks the report row inside the current transaction.
	GetForUpdate(ctx context.Context, id, tenantID string) (Report, error)
	List(ctx context.Context, tenantID string, filter ExpenseFilter) ([]Report, int64, error)
	UpdateHeader(ctx context.Context, report Report) error
	UpdateStatus(ctx context.Context, report Report) error
	AddItem(ctx context.Context, item Item) (Item, error)
	DeleteItem(ctx context.Context, reportID, itemID string) error
	SetItemReceipt(ctx context.Context, reportID, itemID, path string) error
	RecalculateTotal(ctx context.Context, reportID string) (int64, error)
}
