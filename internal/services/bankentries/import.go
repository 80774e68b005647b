package bankentries

import (
	"io"
	"strings"
	"time"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportXLSX bulk-imports statement lines from a spreadsheet. Expected
// columns: date, counterparty, memo, amount. Rows that fail to parse are
// skipped and counted, not fatal.
func (e *Editor) ImportXLSX(r io.Reader) (imported, skipped int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, 0, apperrors.Wrap(apperrors.KindInput, apperrors.CodeUnsupportedSource,
			"open spreadsheet", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, 0, apperrors.Wrap(apperrors.KindInput, apperrors.CodeUnsupportedSource,
			"read spreadsheet rows", err)
	}

	for i, row := range rows {
		// Header row
		if i == 0 {
			continue
		}
		if len(row) < 4 || strings.Join(row, "") == "" {
			skipped++
			continue
		}

		date, perr := parseDate(strings.TrimSpace(row[0]))
		if perr != nil {
			e.log.Warn("import: bad date, row skipped", zap.Int("row", i+1), zap.String("value", row[0]))
			skipped++
			continue
		}
		amount, perr := decimal.NewFromString(strings.TrimSpace(row[3]))
		if perr != nil {
			e.log.Warn("import: bad amount, row skipped", zap.Int("row", i+1), zap.String("value", row[3]))
			skipped++
			continue
		}
		counterparty := strings.TrimSpace(row[1])
		if counterparty == "" {
			skipped++
			continue
		}

		entry := &models.BankStatementEntry{
			ID:               uuid.New(),
			TransactionDate:  date,
			Counterparty:     counterparty,
			Memo:             strings.TrimSpace(row[2]),
			Amount:           amount,
			Kind:             kindForAmount(amount),
			AssignmentStatus: models.EntryUnassigned,
			CreatedAt:        time.Now(),
		}
		if cerr := e.entries.Create(entry); cerr != nil {
			return imported, skipped, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
				"insert imported entry", cerr)
		}
		imported++
	}

	e.log.Info("bank statement imported", zap.Int("imported", imported), zap.Int("skipped", skipped))
	return imported, skipped, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse("02-01-2006", value)
}
