package application

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sebuszqo/FinMind/internal/finance/domain"
	"github.com/sebuszqo/FinMind/internal/log"
)

const ExportSheetName = "Transactions"

var exportHeaders = []string{"Date", "Type", "Category", "Description", "Payment method", "Status", "Amount"}

type ExportService struct {
	transactions domain.TransactionRepository
	logger       *log.Logger
}

func NewExportService(transactions domain.TransactionRepository, logger *log.Logger) *ExportService {
	return &ExportService{transactions: transactions, logger: logger.WithComponent(log.ComponentFinance)}
}

// ExportTransactions writes the user's transactions in period as an xlsx
// workbook to w, newest first.
func (s *ExportService) ExportTransactions(ctx context.Context, userID string, period domain.DateRange, w io.Writer) error {
	transactions, err := s.transactions.FindByUser(ctx, userID, domain.TransactionFilter{Range: period})
	if err != nil {
		return logFailure(ctx, s.logger, "export_transactions", userID, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExportSheetName, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, t := range transactions {
		row := i + 2
		values := []interface{}{
			t.Date.Format("2006-01-02"),
			string(t.Type),
			t.Category,
			t.Description,
			t.PaymentMethod,
			string(t.Status),
			t.Amount.InexactFloat64(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(ExportSheetName, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
