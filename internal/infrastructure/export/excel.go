package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/dto"
)

// Sheet names of the workbook.
const (
	ProductsSheet = "Products"
	SummarySheet  = "Summary"
	CategorySheet = "Risk by Category"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var productHeader = []interface{}{
	"Product ID", "SKU", "Name", "Category", "Warehouse",
	"Stock Level", "Sales Velocity", "Stock Age (days)", "Risk Score", "Risk Bucket",
}

// Report is the content of one workbook.
type Report struct {
	Products   []dto.ProductRecord
	Summary    dto.SummaryResponse
	Categories dto.ChartResponse
}

// ExcelExporter renders risk reports as XLSX workbooks.
type ExcelExporter struct{}

// NewExcelExporter creates a new ExcelExporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Write renders r and streams the workbook to w.
func (e *ExcelExporter) Write(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := e.writeProducts(f, header, r.Products); err != nil {
		return err
	}
	if err := e.writeSummary(f, header, r.Summary); err != nil {
		return err
	}
	if err := e.writeCategories(f, header, r.Categories); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeProducts(f *excelize.File, header int, products []dto.ProductRecord) error {
	if err := writeRow(f, ProductsSheet, 1, productHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(ProductsSheet, 1, 1, header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, p := range products {
		row := []interface{}{
			p.ProductID, p.SKU, p.Name, p.Category, p.Warehouse,
			p.StockLevel, p.SalesVelocity, p.StockAgeDays, p.RiskScore, p.RiskBucket,
		}
		if err := writeRow(f, ProductsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(ProductsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, header int, s dto.SummaryResponse) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SummarySheet, err)
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Products", s.TotalProducts},
		{"High Risk", s.HighRisk},
		{"Medium Risk", s.MediumRisk},
		{"Low Risk", s.LowRisk},
		{"Average Risk", s.AverageRisk},
	}
	for i, row := range rows {
		if err := writeRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeCategories(f *excelize.File, header int, c dto.ChartResponse) error {
	if _, err := f.NewSheet(CategorySheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", CategorySheet, err)
	}
	if err := writeRow(f, CategorySheet, 1, []interface{}{"Category", "Average Risk"}); err != nil {
		return err
	}
	if err := f.SetRowStyle(CategorySheet, 1, 1, header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, label := range c.Labels {
		var v float64
		if i < len(c.Values) {
			v = c.Values[i]
		}
		if err := writeRow(f, CategorySheet, i+2, []interface{}{label, v}); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
