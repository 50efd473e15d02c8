package inventory

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/FischerJoao/mindestoque/internal/domain"
)

var exportHeaders = []string{"ID", "Name", "Description", "Image URL", "Price", "Quantity"}

// WriteXLSX renders a product snapshot as an Excel workbook.
func WriteXLSX(w io.Writer, products []domain.Product) error {
	file := excelize.NewFile()
	sheet := "Sheet1"
	for i, h := range exportHeaders {
		file.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, p := range products {
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.ID)
		file.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Name)
		file.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.Description)
		file.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.ImageURL)
		file.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.Price)
		file.SetCellValue(sheet, fmt.Sprintf("F%d", row), p.Quantity)
	}
	return errors.Wrap(file.Write(w), "write xlsx export")
}

type exportRow struct {
	ID          string  `csv:"id"`
	Name        string  `csv:"name"`
	Description string  `csv:"description"`
	ImageURL    string  `csv:"image_url"`
	Price       float64 `csv:"price"`
	Quantity    int     `csv:"quantity"`
}

// WriteCSV renders a product snapshot as CSV.
func WriteCSV(w io.Writer, products []domain.Product) error {
	rows := make([]exportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, exportRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Price:       p.Price,
			Quantity:    p.Quantity,
		})
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "write csv export")
}
