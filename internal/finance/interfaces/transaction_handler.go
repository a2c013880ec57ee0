package interfaces

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/log"
)

type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, transaction *domain.Transaction) error
	CreateTransactionsBulk(ctx context.Context, userID string, transactions []*domain.Transaction) error
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID string, changes domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	GetTransactionSummary(ctx context.Context, userID string, period domain.DateRange) (map[int]application.TransactionSummary, error)
}

type TransactionExporter interface {
	ExportTransactions(ctx context.Context, userID string, period domain.DateRange, w io.Writer) error
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TransactionHandler struct {
	service  TransactionServiceInterface
	exporter TransactionExporter
	errors   errorWriter
}

func NewTransactionHandler(service TransactionServiceInterface, exporter TransactionExporter, logger *log.Logger) *TransactionHandler {
	if service == nil || exporter == nil {
		panic("transaction service and exporter must not be nil")
	}
	return &TransactionHandler{
		service:  service,
		exporter: exporter,
		errors:   errorWriter{logger: logger.WithComponent(log.ComponentHTTP)},
	}
}

type transactionRequest struct {
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"paymentMethod"`
	Date          string          `json:"date"`
	Status        string          `json:"status"`
}

func (req transactionRequest) toTransaction(userID string) (*domain.Transaction, error) {
	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		UserID:        userID,
		Type:          domain.TransactionType(req.Type),
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Date:          date,
		Status:        domain.TransactionStatus(req.Status),
	}, nil
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	transaction, err := req.toTransaction(userID)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	if err := h.service.CreateTransaction(r.Context(), transaction); err != nil {
		h.errors.write(w, r, "Failed to create transaction", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Transaction successfully created.", transaction)
}

func (h *TransactionHandler) CreateTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Transactions []transactionRequest `json:"transactions"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	if len(req.Transactions) == 0 {
		RespondError(w, http.StatusBadRequest, "Invalid request body - no transactions provided")
		return
	}

	transactions := make([]*domain.Transaction, 0, len(req.Transactions))
	var dateErrors financeErrors.ValidationErrors
	for i, item := range req.Transactions {
		transaction, err := item.toTransaction(userID)
		if err != nil {
			dateErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
			continue
		}
		transactions = append(transactions, transaction)
	}
	if err := dateErrors.Err(); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	if err := h.service.CreateTransactionsBulk(r.Context(), userID, transactions); err != nil {
		h.errors.write(w, r, "Failed to create transactions", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Transactions successfully created.", transactions)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	transaction, err := h.service.GetTransaction(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve transaction", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Transaction retrieved successfully.", transaction)
}

func (h *TransactionHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	transactionType := r.URL.Query().Get("type")
	if transactionType != "" && !domain.IsValidTransactionType(transactionType) {
		RespondError(w, http.StatusBadRequest, "Invalid transaction type")
		return
	}
	period, err := parseDateRange(r)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	limit, err := parsePositiveInt(r, "limit", application.DefaultPageSize)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	page, err := parsePositiveInt(r, "page", 1)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	transactions, err := h.service.GetUserTransactions(r.Context(), userID, domain.TransactionFilter{
		Type:  domain.TransactionType(transactionType),
		Range: period,
		Limit: limit,
		Page:  page,
	})
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve transactions", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Transactions retrieved successfully.", transactions)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	changes, err := req.toTransaction(userID)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	changes.ID = r.PathValue("id")

	updated, err := h.service.UpdateTransaction(r.Context(), userID, *changes)
	if err != nil {
		h.errors.write(w, r, "Failed to update transaction", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Transaction updated successfully.", updated)
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTransaction(r.Context(), userID, r.PathValue("id")); err != nil {
		h.errors.write(w, r, "Failed to delete transaction", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Transaction deleted successfully.", nil)
}

func (h *TransactionHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve balance", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Balance retrieved successfully.", map[string]decimal.Decimal{"balance": balance})
}

func (h *TransactionHandler) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	period, err := parseDateRange(r)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}
	summary, err := h.service.GetTransactionSummary(r.Context(), userID, period)
	if err != nil {
		h.errors.write(w, r, "Failed to retrieve transaction summary", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Transactions summary retrieved successfully.", summary)
}

// ExportTransactions streams an xlsx workbook. The file is built in memory
// first so a failure can still be reported as JSON.
func (h *TransactionHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	period, err := parseDateRange(r)
	if err != nil {
		h.errors.write(w, r, "Invalid request", err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.ExportTransactions(r.Context(), userID, period, &buf); err != nil {
		h.errors.write(w, r, "Failed to export transactions", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%s.xlsx"`, exportStamp(period)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func exportStamp(period domain.DateRange) string {
	switch {
	case !period.From.IsZero() && !period.To.IsZero():
		return period.From.Format(dateLayout) + "_" + period.To.Format(dateLayout)
	case !period.From.IsZero():
		return "from-" + period.From.Format(dateLayout)
	case !period.To.IsZero():
		return "until-" + period.To.Format(dateLayout)
	}
	return "all"
}
