package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/expense"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type expenseRepositoryImpl struct {
	db *database.DB
}

func NewExpenseRepository(db *database.DB) expense.ExpenseRepository {
	return &expenseRepositoryImpl{db: db}
}

const reportColumns = `id, tenant_id, requester_id, title, status, total_amount, currency,
		submitted_at, reviewed_by, reviewed_at, approved_by, approved_at,
		rejected_by, rejected_at, rejection_reason, paid_by, paid_at, payment_reference,
		created_at, updated_at`

func scanReport(row pgx.Row) (expense.Report, error) {
	var r expense.Report
	err := row.Scan(
		&r.ID,
		&r.TenantID,
		&r.RequesterID,
		&r.Title,
		&r.Status,
		&r.TotalAmount,
		&r.Currency,
		&r.SubmittedAt,
		&r.ReviewedBy,
		&r.ReviewedAt,
		&r.ApprovedBy,
		&r.ApprovedAt,
		&r.RejectedBy,
		&r.RejectedAt,
		&r.RejectionReason,
		&r.PaidBy,
		&r.PaidAt,
		&r.PaymentReference,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// Create implements expense.ExpenseRepository. Items on report are inserted too.
func (e *expenseRepositoryImpl) Create(ctx context.Context, report expense.Report) (expense.Report, error) {
	q := GetQuerier(ctx, e.db)

	id, err := uuid.NewV7()
	if err != nil {
		return expense.Report{}, err
	}

	created, err := scanReport(q.QueryRow(ctx, `
		INSERT INTO expense_reports (id, tenant_id, requester_id, title, status, total_amount, currency)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
		RETURNING `+reportColumns,
		id.String(), report.TenantID, report.RequesterID, report.Title, expense.StatusDraft, report.Currency,
	))
	if err != nil {
		return expense.Report{}, fmt.Errorf("failed to create expense report: %w", err)
	}

	for _, it := range report.Items {
		it.ReportID = created.ID
		item, err := e.AddItem(ctx, it)
		if err != nil {
			return expense.Report{}, err
		}
		created.Items = append(created.Items, item)
	}
	if len(created.Items) > 0 {
		if created.TotalAmount, err = e.RecalculateTotal(ctx, created.ID); err != nil {
			return expense.Report{}, err
		}
	}
	return created, nil
}

func (e *expenseRepositoryImpl) get(ctx context.Context, id, tenantID string, forUpdate bool) (expense.Report, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + reportColumns + ` FROM expense_reports WHERE id = $1 AND tenant_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	report, err := scanReport(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Report{}, expense.ErrReportNotFound
		}
		return expense.Report{}, fmt.Errorf("failed to get expense report: %w", err)
	}

	report.Items, err = e.listItems(ctx, report.ID)
	if err != nil {
		return expense.Report{}, err
	}
	return report, nil
}

// GetByID implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) GetByID(ctx context.Context, id, tenantID string) (expense.Report, error) {
	return e.get(ctx, id, tenantID, false)
}

// GetForUpdate implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) GetForUpdate(ctx context.Context, id, tenantID string) (expense.Report, error) {
	return e.get(ctx, id, tenantID, true)
}

func (e *expenseRepositoryImpl) listItems(ctx context.Context, reportID string) ([]expense.Item, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `
		SELECT id, report_id, item_date, category, description, amount, receipt_path, created_at
		FROM expense_items
		WHERE report_id = $1
		ORDER BY item_date ASC, created_at ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense items: %w", err)
	}
	defer rows.Close()

	items := []expense.Item{}
	for rows.Next() {
		var it expense.Item
		if err := rows.Scan(&it.ID, &it.ReportID, &it.Date, &it.Category, &it.Description, &it.Amount, &it.ReceiptPath, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List implements expense.ExpenseRepository. Items are not loaded.
func (e *expenseRepositoryImpl) List(ctx context.Context, tenantID string, filter expense.ExpenseFilter) ([]expense.Report, int64, error) {
	q := GetQuerier(ctx, e.db)

	where := "tenant_id = $1"
	args := []interface{}{tenantID}
	argIdx := 2
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.RequesterID != nil && *filter.RequesterID != "" {
		where += fmt.Sprintf(" AND requester_id = $%d", argIdx)
		args = append(args, *filter.RequesterID)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM expense_reports WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expense reports: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM expense_reports WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		reportColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query expense reports: %w", err)
	}
	defer rows.Close()

	reports := make([]expense.Report, 0, filter.Limit)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// UpdateHeader implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) UpdateHeader(ctx context.Context, report expense.Report) error {
	q := GetQuerier(ctx, e.db)
	tag, err := q.Exec(ctx, `
		UPDATE expense_reports SET title = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
	`, report.Title, report.ID, report.TenantID)
	if err != nil {
		return fmt.Errorf("failed to update expense report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrReportNotFound
	}
	return nil
}

// UpdateStatus implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) UpdateStatus(ctx context.Context, report expense.Report) error {
	q := GetQuerier(ctx, e.db)
	tag, err := q.Exec(ctx, `
		UPDATE expense_reports
		SET status = $1, submitted_at = $2, reviewed_by = $3, reviewed_at = $4,
			approved_by = $5, approved_at = $6, rejected_by = $7, rejected_at = $8,
			rejection_reason = $9, paid_by = $10, paid_at = $11, payment_reference = $12,
			updated_at = NOW()
		WHERE id = $13 AND tenant_id = $14
	`,
		report.Status,
		report.SubmittedAt,
		report.ReviewedBy,
		report.ReviewedAt,
		report.ApprovedBy,
		report.ApprovedAt,
		report.RejectedBy,
		report.RejectedAt,
		report.RejectionReason,
		report.PaidBy,
		report.PaidAt,
		report.PaymentReference,
		report.ID,
		report.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrReportNotFound
	}
	return nil
}

// AddItem implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) AddItem(ctx context.Context, item expense.Item) (expense.Item, error) {
	q := GetQuerier(ctx, e.db)

	id, err := uuid.NewV7()
	if err != nil {
		return expense.Item{}, err
	}

	var created expense.Item
	err = q.QueryRow(ctx, `
		INSERT INTO expense_items (id, report_id, item_date, category, description, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, report_id, item_date, category, description, amount, receipt_path, created_at
	`, id.String(), item.ReportID, item.Date, item.Category, item.Description, item.Amount).Scan(
		&created.ID,
		&created.ReportID,
		&created.Date,
		&created.Category,
		&created.Description,
		&created.Amount,
		&created.ReceiptPath,
		&created.CreatedAt,
	)
	if err != nil {
		return expense.Item{}, fmt.Errorf("failed to add expense item: %w", err)
	}
	return created, nil
}

// DeleteItem implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) DeleteItem(ctx context.Context, reportID, itemID string) error {
	q := GetQuerier(ctx, e.db)
	tag, err := q.Exec(ctx, `DELETE FROM expense_items WHERE id = $1 AND report_id = $2`, itemID, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete expense item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrItemNotFound
	}
	return nil
}

// SetItemReceipt implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) SetItemReceipt(ctx context.Context, reportID, itemID, path string) error {
	q := GetQuerier(ctx, e.db)
	tag, err := q.Exec(ctx, `
		UPDATE expense_items SET receipt_path = $1
		WHERE id = $2 AND report_id = $3
	`, path, itemID, reportID)
	if err != nil {
		return fmt.Errorf("failed to set receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrItemNotFound
	}
	return nil
}

// RecalculateTotal implements expense.ExpenseRepository.
func (e *expenseRepositoryImpl) RecalculateTotal(ctx context.Context, reportID string) (int64, error) {
	q := GetQuerier(ctx, e.db)
	var total int64
	err := q.QueryRow(ctx, `
		UPDATE expense_reports
		SET total_amount = COALESCE((SELECT SUM(amount) FROM expense_items WHERE report_id = $1), 0),
			updated_at = NOW()
		WHERE id = $1
		RETURNING total_amount
	`, reportID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to recalculate expense total: %w", err)
	}
	return total, nil
}
