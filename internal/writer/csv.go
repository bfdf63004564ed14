package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"paisometer/internal/models"
)

var fieldnames = []string{"date", "merchant", "amount", "type", "category", "note", "id"}

// Writer handles CSV file writing
type Writer struct {
	outputDir string
}

// New creates a new Writer instance
func New(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
	}
}

// Write writes ledger entries to one CSV file per calendar month, oldest
// entry first, and returns the paths written.
func (w *Writer) Write(txns []models.LedgerTransaction) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	grouped := make(map[string][]models.LedgerTransaction)
	for _, tx := range txns {
		month := tx.Time().Format("2006-01")
		grouped[month] = append(grouped[month], tx)
	}

	months := make([]string, 0, len(grouped))
	for month := range grouped {
		months = append(months, month)
	}
	sort.Strings(months)

	written := make([]string, 0, len(months))
	for _, month := range months {
		transactions := grouped[month]
		sort.SliceStable(transactions, func(i, j int) bool {
			return transactions[i].Timestamp < transactions[j].Timestamp
		})

		filename := filepath.Join(w.outputDir, "paisometer-"+month+".csv")
		if err := w.writeCSVFile(filename, transactions); err != nil {
			return written, err
		}
		written = append(written, filename)
	}

	return written, nil
}

// writeCSVFile writes a single CSV file
func (w *Writer) writeCSVFile(filename string, transactions []models.LedgerTransaction) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", filename, err)
	}
	defer file.Close()

	// Write BOM for UTF-8
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("error writing BOM to %s: %w", filename, err)
	}

	writer := csv.NewWriter(file)
	writer.Comma = ';'

	if err := writer.Write(fieldnames); err != nil {
		return fmt.Errorf("error writing header to %s: %w", filename, err)
	}

	for _, tx := range transactions {
		record := []string{
			tx.Time().Format("2006-01-02 15:04:05"),
			tx.Merchant,
			tx.Amount.StringFixed(2),
			string(tx.Type),
			tx.Category,
			tx.Note,
			tx.ID,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing transaction to %s: %w", filename, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing writer for %s: %w", filename, err)
	}

	return nil
}
