package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Reports"

var exportHeaders = []string{
	"ID", "Title", "Category", "Location", "Country", "Status", "Progress (%)",
	"Assigned Contractor", "Estimate Min", "Estimate Max", "Currency", "Created At",
}

// ExportService builds XLSX exports of the report backlog for officials
type ExportService struct {
	reports ReportStore
}

// NewExportService creates an export service
func NewExportService(reports ReportStore) *ExportService {
	return &ExportService{reports: reports}
}

// ExportReports generates an XLSX workbook of reports, optionally filtered
// by status, and returns it as a buffer ready for download.
func (s *ExportService) ExportReports(ctx context.Context, status string) (*bytes.Buffer, error) {
	if status != "" && !model.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	reports, err := s.reports.List(status, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, exportSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := s.writeHeaders(f); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	if err := s.writeRows(f, reports); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}
	if err := s.autoFitColumns(f, len(exportHeaders)); err != nil {
		return nil, fmt.Errorf("fit columns: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	metrics.Get().IncrementExportServed()

	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionReportExport,
		Resource: "report",
		Success:  true,
		Details: map[string]interface{}{
			"status": status,
			"count":  len(reports),
		},
	})

	logger.Get(ctx).Info().
		Int("count", len(reports)).
		Str("status", status).
		Msg("Report export generated")

	return buf, nil
}

func (s *ExportService) writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
	})
	if err != nil {
		return err
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(exportSheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeRows(f *excelize.File, reports []model.Report) error {
	for i, report := range reports {
		var estimateMin, estimateMax interface{}
		if report.CostEstimate != nil {
			estimateMin = report.CostEstimate.Min
			estimateMax = report.CostEstimate.Max
		}

		values := []interface{}{
			report.ID, report.Title, report.Category, report.Location,
			report.Country, report.Status, report.Progress,
			report.AssignedContractor, estimateMin, estimateMax,
			report.Currency, report.CreatedAt.Format(time.RFC3339),
		}

		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ExportService) autoFitColumns(f *excelize.File, columns int) error {
	for i := 1; i <= columns; i++ {
		col, err := excelize.ColumnNumberToName(i)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(exportSheetName, col, col, 18); err != nil {
			return err
		}
	}
	return nil
}
