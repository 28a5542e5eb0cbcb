package expense

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/expense"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/user"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/mailqueue"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/sse"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/storage"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
	"github.com/cmlabs-hris/guardops-backend/internal/service/file"
)

// EventStatusChanged is pushed to the requester's live stream after a transition.
const EventStatusChanged = "expense.status"

// EventPublisher delivers live events to a user's open streams.
type EventPublisher interface {
	Publish(userID string, event sse.Event) int
}

type expenseServiceImpl struct {
	tx         database.Transactor
	repo       expense.ExpenseRepository
	users      user.UserRepository
	audit      audit.Recorder
	authorizer access.Authorizer
	files      file.FileService
	mail       mailqueue.Publisher
	events     EventPublisher
}

func NewExpenseService(
	tx database.Transactor,
	repo expense.ExpenseRepository,
	users user.UserRepository,
	recorder audit.Recorder,
	authorizer access.Authorizer,
	files file.FileService,
	mail mailqueue.Publisher,
	events EventPublisher,
) expense.ExpenseService {
	if mail == nil {
		mail = mailqueue.NoopPublisher{}
	}
	if events == nil {
		events = sse.NewHub()
	}
	return &expenseServiceImpl{
		tx:         tx,
		repo:       repo,
		users:      users,
		audit:      recorder,
		authorizer: authorizer,
		files:      files,
		mail:       mail,
		events:     events,
	}
}

// Create opens a draft report for the caller, optionally with its first items.
func (s *expenseServiceImpl) Create(ctx context.Context, req expense.CreateReportRequest) (expense.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ReportResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return expense.ReportResponse{}, err
	}

	report := expense.Report{
		TenantID:    session.TenantID,
		RequesterID: session.UserID,
		Title:       req.Title,
		Status:      expense.StatusDraft,
		Currency:    req.Currency,
	}
	for _, it := range req.Items {
		report.Items = append(report.Items, it.ToItem(""))
	}

	var created expense.Report
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, report)
		return err
	})
	if err != nil {
		return expense.ReportResponse{}, fmt.Errorf("failed to create expense report: %w", err)
	}
	return expense.NewReportResponse(created, s.files.URL), nil
}

// GetByID hides reports the caller may not see behind ErrReportNotFound.
func (s *expenseServiceImpl) GetByID(ctx context.Context, id string) (expense.ReportResponse, error) {
	if !validator.IsValidUUID(id) {
		return expense.ReportResponse{}, validator.ValidationErrors{{Field: "id", Message: "id must be a valid UUID"}}
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return expense.ReportResponse{}, err
	}

	report, err := s.repo.GetByID(ctx, id, session.TenantID)
	if err != nil {
		return expense.ReportResponse{}, err
	}
	if report.RequesterID != session.UserID && !s.canSeeAll(session) {
		return expense.ReportResponse{}, expense.ErrReportNotFound
	}
	return expense.NewReportResponse(report, s.files.URL), nil
}

// List returns the tenant's reports for finance reviewers and the caller's own reports otherwise.
func (s *expenseServiceImpl) List(ctx context.Context, filter expense.ExpenseFilter) (expense.ListReportResponse, error) {
	if err := filter.Validate(); err != nil {
		return expense.ListReportResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return expense.ListReportResponse{}, err
	}
	if !s.canSeeAll(session) {
		filter.RequesterID = &session.UserID
	}

	reports, total, err := s.repo.List(ctx, session.TenantID, filter)
	if err != nil {
		return expense.ListReportResponse{}, fmt.Errorf("failed to list expense reports: %w", err)
	}

	resp := expense.ListReportResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Reports:    make([]expense.ReportResponse, 0, len(reports)),
	}
	for _, r := range reports {
		resp.Reports = append(resp.Reports, expense.NewReportResponse(r, s.files.URL))
	}
	return resp, nil
}

// Update implements expense.ExpenseService.
func (s *expenseServiceImpl) Update(ctx context.Context, req expense.UpdateReportRequest) (expense.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ReportResponse{}, err
	}

	var updated expense.Report
	err := s.editDraft(ctx, req.ID, func(txCtx context.Context, report *expense.Report) error {
		report.Title = *req.Title
		if err := s.repo.UpdateHeader(txCtx, *report); err != nil {
			return err
		}
		updated = *report
		return nil
	})
	if err != nil {
		return expense.ReportResponse{}, err
	}
	return expense.NewReportResponse(updated, s.files.URL), nil
}

// AddItem implements expense.ExpenseService.
func (s *expenseServiceImpl) AddItem(ctx context.Context, req expense.AddItemRequest) (expense.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ReportResponse{}, err
	}

	var updated expense.Report
	err := s.editDraft(ctx, req.ReportID, func(txCtx context.Context, report *expense.Report) error {
		item, err := s.repo.AddItem(txCtx, req.ToItem(report.ID))
		if err != nil {
			return err
		}
		report.Items = append(report.Items, item)
		report.TotalAmount, err = s.repo.RecalculateTotal(txCtx, report.ID)
		updated = *report
		return err
	})
	if err != nil {
		return expense.ReportResponse{}, err
	}
	return expense.NewReportResponse(updated, s.files.URL), nil
}

// RemoveItem deletes a draft item and its stored receipt.
func (s *expenseServiceImpl) RemoveItem(ctx context.Context, reportID, itemID string) (expense.ReportResponse, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(reportID) {
		errs.Add("report_id", "report_id must be a valid UUID")
	}
	if !validator.IsValidUUID(itemID) {
		errs.Add("item_id", "item_id must be a valid UUID")
	}
	if err := errs.OrNil(); err != nil {
		return expense.ReportResponse{}, err
	}

	var (
		updated expense.Report
		receipt *string
	)
	err := s.editDraft(ctx, reportID, func(txCtx context.Context, report *expense.Report) error {
		kept := make([]expense.Item, 0, len(report.Items))
		for _, it := range report.Items {
			if it.ID == itemID {
				receipt = it.ReceiptPath
				continue
			}
			kept = append(kept, it)
		}

		if err := s.repo.DeleteItem(txCtx, report.ID, itemID); err != nil {
			return err
		}
		report.Items = kept

		var err error
		report.TotalAmount, err = s.repo.RecalculateTotal(txCtx, report.ID)
		updated = *report
		return err
	})
	if err != nil {
		return expense.ReportResponse{}, err
	}

	if receipt != nil {
		s.deleteReceipt(ctx, *receipt)
	}
	return expense.NewReportResponse(updated, s.files.URL), nil
}

// UploadReceipt stores the file first and only then points the item at it.
func (s *expenseServiceImpl) UploadReceipt(ctx context.Context, req expense.UploadReceiptRequest, content io.Reader) (expense.ItemResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ItemResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return expense.ItemResponse{}, err
	}

	report, err := s.repo.GetByID(ctx, req.ReportID, session.TenantID)
	if err != nil {
		return expense.ItemResponse{}, err
	}
	if err := checkDraftOwner(report, session); err != nil {
		return expense.ItemResponse{}, err
	}
	item, ok := findItem(report, req.ItemID)
	if !ok {
		return expense.ItemResponse{}, expense.ErrItemNotFound
	}

	key, err := s.files.UploadReceipt(ctx, session.TenantID, report.ID, item.ID, content, storage.UploadOptions{
		MaxSize:             expense.MaxReceiptSize,
		AllowedContentTypes: receiptContentTypes(),
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return expense.ItemResponse{}, expense.ErrReceiptTooLarge
		case errors.Is(err, storage.ErrContentTypeDeny):
			return expense.ItemResponse{}, expense.ErrReceiptType
		}
		return expense.ItemResponse{}, err
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		locked, err := s.repo.GetForUpdate(txCtx, report.ID, session.TenantID)
		if err != nil {
			return err
		}
		if err := checkDraftOwner(locked, session); err != nil {
			return err
		}
		return s.repo.SetItemReceipt(txCtx, report.ID, item.ID, key)
	})
	if err != nil {
		s.deleteReceipt(ctx, key)
		return expense.ItemResponse{}, err
	}

	if item.ReceiptPath != nil {
		s.deleteReceipt(ctx, *item.ReceiptPath)
	}
	item.ReceiptPath = &key
	return expense.NewItemResponse(item, s.files.URL), nil
}

// Transition moves a report through its lifecycle under a row lock and records the change.
func (s *expenseServiceImpl) Transition(ctx context.Context, req expense.TransitionRequest) (expense.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ReportResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return expense.ReportResponse{}, err
	}

	var (
		report expense.Report
		from   expense.Status
	)
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		report, err = s.repo.GetForUpdate(txCtx, req.ID, session.TenantID)
		if err != nil {
			return err
		}
		if report.RequesterID != session.UserID && !s.canSeeAll(session) {
			return expense.ErrReportNotFound
		}
		if !s.canTransition(session, req.Transition) {
			return access.ErrForbidden
		}

		from = report.Status
		if err := report.Apply(req.Transition, expense.TransitionInput{
			ActorID:          session.UserID,
			Reason:           req.Reason,
			PaymentReference: req.PaymentReference,
			At:               time.Now(),
		}); err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(txCtx, report); err != nil {
			return err
		}

		payload := map[string]any{
			"from":       from,
			"to":         report.Status,
			"transition": req.Transition,
		}
		if req.Reason != "" {
			payload["reason"] = req.Reason
		}
		if req.PaymentReference != "" {
			payload["payment_reference"] = req.PaymentReference
		}
		return s.audit.Record(txCtx, audit.ActionExpenseTransition, audit.EntityExpense, report.ID, payload)
	})
	if err != nil {
		return expense.ReportResponse{}, err
	}

	if report.RequesterID != session.UserID {
		s.events.Publish(report.RequesterID, sse.Event{Name: EventStatusChanged, Data: map[string]string{
			"report_id": report.ID,
			"from":      string(from),
			"status":    string(report.Status),
		}})
		s.notifyRequester(ctx, report, from)
	}
	return expense.NewReportResponse(report, s.files.URL), nil
}

// editDraft runs fn on a locked draft report owned by the caller.
func (s *expenseServiceImpl) editDraft(ctx context.Context, reportID string, fn func(txCtx context.Context, report *expense.Report) error) error {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		report, err := s.repo.GetForUpdate(txCtx, reportID, session.TenantID)
		if err != nil {
			return err
		}
		if err := checkDraftOwner(report, session); err != nil {
			return err
		}
		return fn(txCtx, &report)
	})
}

func (s *expenseServiceImpl) canSeeAll(session auth.Session) bool {
	perms := s.authorizer.ForRole(session.Role)
	return s.authorizer.CanView(perms, access.ModuleFinance, access.ResourceExpenses) &&
		s.authorizer.CanView(perms, access.ModuleFinance, access.ResourceExpenseReview)
}

func (s *expenseServiceImpl) canTransition(session auth.Session, t expense.Transition) bool {
	perms := s.authorizer.ForRole(session.Role)
	switch t {
	case expense.TransitionReview:
		return s.authorizer.CanEdit(perms, access.ModuleFinance, access.ResourceExpenseReview)
	case expense.TransitionApprove, expense.TransitionReject, expense.TransitionPay:
		return s.authorizer.CanEdit(perms, access.ModuleFinance, access.ResourceExpenseApproval)
	default:
		return s.authorizer.CanEdit(perms, access.ModuleFinance, access.ResourceExpenses)
	}
}

func (s *expenseServiceImpl) notifyRequester(ctx context.Context, report expense.Report, from expense.Status) {
	requester, err := s.users.GetByID(ctx, report.RequesterID)
	if err != nil {
		slog.Error("failed to load expense requester", "report_id", report.ID, "error", err)
		return
	}

	data := map[string]string{
		"full_name": requester.FullName,
		"title":     report.Title,
		"from":      string(from),
		"status":    string(report.Status),
	}
	if report.RejectionReason != nil {
		data["reason"] = *report.RejectionReason
	}
	if err := s.mail.Publish(ctx, mailqueue.Message{
		Type: mailqueue.TypeExpenseStatus,
		To:   requester.Email,
		Data: data,
	}); err != nil {
		slog.Error("failed to queue expense status mail", "report_id", report.ID, "error", err)
	}
}

func (s *expenseServiceImpl) deleteReceipt(ctx context.Context, key string) {
	if err := s.files.DeleteFile(ctx, key); err != nil {
		slog.Error("failed to delete receipt", "path", key, "error", err)
	}
}

func checkDraftOwner(report expense.Report, session auth.Session) error {
	if report.RequesterID != session.UserID {
		return expense.ErrNotOwner
	}
	if !report.IsEditable() {
		return expense.ErrNotEditable
	}
	return nil
}

func findItem(report expense.Report, itemID string) (expense.Item, bool) {
	for _, it := range report.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return expense.Item{}, false
}

func receiptContentTypes() []string {
	types := make([]string, 0, len(expense.ReceiptContentTypes))
	for ct := range expense.ReceiptContentTypes {
		types = append(types, ct)
	}
	return types
}
