package service

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the material lines of a lead as an XLSX workbook
// for quoting.
type ExportService interface {
	ExportLeadLines(leadID uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	leadRepo repository.LeadRepository
}

func NewExportService(leadRepo repository.LeadRepository) ExportService {
	return &exportService{leadRepo: leadRepo}
}

var exportHeaders = []string{"Product", "Description", "Quantity", "Unit Price", "Subtotal", "Optional", "Files"}

func (s *exportService) ExportLeadLines(leadID uint) (*bytes.Buffer, string, error) {
	lead, err := s.leadRepo.FindWithLines(leadID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Material Lines"); err != nil {
		return nil, "", err
	}
	sheet = "Material Lines"

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", err
		}
	}

	var total float64
	for i, line := range lead.MaterialLines {
		row := i + 2
		subtotal := line.UnitPrice * line.Quantity
		total += subtotal

		files := line.FileName
		if line.ConditionalFileName != "" {
			if files != "" {
				files += ", "
			}
			files += line.ConditionalFileName
		}

		values := []interface{}{
			line.DisplayName,
			line.Description,
			line.Quantity,
			line.UnitPrice,
			subtotal,
			line.IsOptional,
			files,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", err
			}
		}
	}

	totalRow := len(lead.MaterialLines) + 3
	if err := f.SetCellValue(sheet, "D"+strconv.Itoa(totalRow), "Total"); err != nil {
		return nil, "", err
	}
	if err := f.SetCellValue(sheet, "E"+strconv.Itoa(totalRow), total); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to render lead export", err, map[string]interface{}{
			"lead_id": leadID,
		})
		return nil, "", err
	}

	filename := fmt.Sprintf("lead-%d-materials.xlsx", leadID)
	logger.Info("Lead material lines exported", map[string]interface{}{
		"lead_id":    leadID,
		"line_count": len(lead.MaterialLines),
	})
	return buf, filename, nil
}
