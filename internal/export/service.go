// Package export renders stored AWB records as XLSX workbooks and CSV files.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/awb-extractor/internal/entity"
	"github.com/joseph-ayodele/awb-extractor/internal/normalize"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
)

// DefaultSheet names the worksheet when none is configured.
const DefaultSheet = "AWB Records"

var headers = []string{
	"Record ID",
	"Platform",
	"Order ID",
	"Ship Date",
	"Ship Time",
	"Tracking Number",
	"Courier",
	"Payment Status",
	"COD Amount (MYR)",
	"Customer Name",
	"Customer Phone",
	"Customer Address",
	"Product Name",
	"SKU",
	"Quantity",
	"Seller",
}

// row returns the cells of one record. The COD amount is numeric so the
// column sums in a spreadsheet.
func row(r entity.AWBRecord) []any {
	amount, _ := normalize.ParseAmount(r.CODAmount)
	return []any{
		r.ID.String(),
		r.Platform.Label(),
		r.OrderID,
		r.ShipDate,
		r.ShipTime,
		r.TrackingNumber,
		r.Courier,
		string(r.PaymentStatus),
		amount.InexactFloat64(),
		r.CustomerName,
		r.CustomerPhone,
		r.CustomerAddress,
		r.ProductName,
		r.SKU,
		r.Quantity,
		r.Seller,
	}
}

// Service is a tiny façade over the record repository that produces export bytes.
type Service struct {
	repo   repository.RecordRepository
	sheet  string
	logger *slog.Logger
}

func NewService(repo repository.RecordRepository, sheet string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Service{repo: repo, sheet: sheet, logger: logger}
}

func (s *Service) list(ctx context.Context, filter repository.Filter) ([]entity.AWBRecord, error) {
	stored, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	recs := make([]entity.AWBRecord, len(stored))
	for i, st := range stored {
		recs[i] = st.AWBRecord
	}
	return recs, nil
}

// ExportXLSX returns an XLSX workbook (as bytes) for the records matching filter.
func (s *Service) ExportXLSX(ctx context.Context, filter repository.Filter) ([]byte, error) {
	start := time.Now()
	recs, err := s.list(ctx, filter)
	if err != nil {
		return nil, err
	}
	b, err := WriteXLSX(recs, s.sheet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// ExportCSV streams the records matching filter to w.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filter repository.Filter) error {
	recs, err := s.list(ctx, filter)
	if err != nil {
		return err
	}
	if err := WriteCSV(w, recs); err != nil {
		return err
	}
	s.logger.Info("export.csv.ok", "rows", len(recs))
	return nil
}

// WriteXLSX renders recs into a single-sheet workbook.
func WriteXLSX(recs []entity.AWBRecord, sheet string) ([]byte, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
	}

	for i, r := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		cells := row(r)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 38) // id
	_ = f.SetColWidth(sheet, "C", "C", 22) // order id
	_ = f.SetColWidth(sheet, "F", "F", 22) // tracking
	_ = f.SetColWidth(sheet, "J", "K", 20) // customer
	_ = f.SetColWidth(sheet, "L", "L", 60) // address
	_ = f.SetColWidth(sheet, "M", "M", 36) // product
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, recs []entity.AWBRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, r := range recs {
		cells := row(r)
		record := make([]string, len(cells))
		for i, c := range cells {
			switch v := c.(type) {
			case string:
				record[i] = v
			case int:
				record[i] = strconv.Itoa(v)
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', 2, 64)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVBytes is WriteCSV into memory.
func CSVBytes(recs []entity.AWBRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
