package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"bank-backend/internal/models"
	"bank-backend/internal/utils"

	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// RenderReceiptPDF renders the receipt of t as a single A4 page.
func RenderReceiptPDF(t *models.Transaction) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Transaction Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, l := range receiptLines(t) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 8, l.label, "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(130, 8, l.value, "1", 1, "", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 6, "Integrity hash: "+t.Hash, "", 1, "", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Statement is the rendered export of an account's transactions.
type Statement struct {
	Filename    string
	ContentType string
	Content     []byte
}

var statementHeader = []string{"ID", "Date", "Type", "Direction", "Amount", "Status", "Description"}

// ExportStatement renders the transactions of accountID within the optional
// window as CSV or XLSX.
func ExportStatement(ctx context.Context, accountID uint, start, end *time.Time, format string) (*Statement, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, ErrUnsupportedFormat
	}

	account, err := GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidDateRange
	}

	transactions, err := completedTransactions(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, []string{
			fmt.Sprint(t.ID),
			t.CreatedAt.Format(time.RFC3339),
			string(t.Type),
			direction(accountID, &t),
			t.Amount.StringFixed(2),
			string(t.Status),
			t.Description,
		})
	}

	base := fmt.Sprintf("statement_%s_%s", account.AccountNumber, time.Now().Format("20060102150405"))
	var content []byte
	if format == FormatXLSX {
		content, err = statementXLSX(rows)
	} else {
		content, err = statementCSV(rows)
	}
	if err != nil {
		return nil, utils.NewInternalError("failed to render statement", err)
	}

	st := &Statement{Filename: base + "." + format, Content: content, ContentType: "text/csv"}
	if format == FormatXLSX {
		st.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return st, nil
}

func direction(accountID uint, t *models.Transaction) string {
	if t.SourceAccountID != nil && *t.SourceAccountID == accountID {
		return "debit"
	}
	return "credit"
}

func statementCSV(rows [][]string) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)
	if err := w.Write(statementHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func statementXLSX(rows [][]string) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Statement")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range statementHeader {
		header.AddCell().SetValue(h)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetValue(v)
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
