package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/expense"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// Multipart overhead allowed on top of the receipt itself.
const receiptFormOverhead = 1 << 20

type ExpenseHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	AddItem(w http.ResponseWriter, r *http.Request)
	RemoveItem(w http.ResponseWriter, r *http.Request)
	UploadReceipt(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
}

type expenseHandlerImpl struct {
	expenseService expense.ExpenseService
}

func NewExpenseHandler(expenseService expense.ExpenseService) ExpenseHandler {
	return &expenseHandlerImpl{expenseService: expenseService}
}

func (h *expenseHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req expense.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.expenseService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Expense report created successfully", result)
}

func (h *expenseHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.expenseService.GetByID(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *expenseHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := expense.ExpenseFilter{
		Status:      getStringQueryParam(r, "status"),
		RequesterID: getStringQueryParam(r, "requester_id"),
		Page:        getIntQueryParam(r, "page", 1),
		Limit:       getIntQueryParam(r, "limit", 20),
	}

	result, err := h.expenseService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *expenseHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req expense.UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "reportID")

	result, err := h.expenseService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expense report updated successfully", result)
}

func (h *expenseHandlerImpl) AddItem(w http.ResponseWriter, r *http.Request) {
	var req expense.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req.CreateItemRequest); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ReportID = chi.URLParam(r, "reportID")

	result, err := h.expenseService.AddItem(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Expense item added successfully", result)
}

func (h *expenseHandlerImpl) RemoveItem(w http.ResponseWriter, r *http.Request) {
	result, err := h.expenseService.RemoveItem(r.Context(), chi.URLParam(r, "reportID"), chi.URLParam(r, "itemID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expense item removed successfully", result)
}

// UploadReceipt expects a multipart form with the file in the "receipt" field.
func (h *expenseHandlerImpl) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, expense.MaxReceiptSize+receiptFormOverhead)
	if err := r.ParseMultipartForm(expense.MaxReceiptSize + receiptFormOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, expense.ErrReceiptTooLarge)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("receipt")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Receipt file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	req := expense.UploadReceiptRequest{
		ReportID:    chi.URLParam(r, "reportID"),
		ItemID:      chi.URLParam(r, "itemID"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}
	result, err := h.expenseService.UploadReceipt(r.Context(), req, file)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Receipt uploaded successfully", result)
}

// Transition applies the action named in the path; reject and pay carry a JSON body.
func (h *expenseHandlerImpl) Transition(w http.ResponseWriter, r *http.Request) {
	var req expense.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "reportID")
	req.Transition = expense.Transition(chi.URLParam(r, "transition"))

	result, err := h.expenseService.Transition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expense report is now "+result.Status, result)
}
