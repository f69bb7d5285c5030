package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/finance"
)

const (
	SheetExpenses   = "Expenses"
	SheetCategories = "Categories"
)

// ExpensesXLSX writes one row per converted expense plus a per-category sheet.
func ExpensesXLSX(s finance.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return nil, err
	}
	header := []any{"Data", "Viagem", "Descrição", "Categoria", "Valor", "Moeda", "Cotação", "Valor (" + string(currency.BaseCurrency) + ")", "Pago"}
	if err := f.SetSheetRow(SheetExpenses, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range s.Rows {
		paid := "Não"
		if r.Paid {
			paid = "Sim"
		}
		row := []any{
			r.Date.Format("2006-01-02"),
			r.TripTitle,
			r.Description,
			r.Category,
			r.Amount.InexactFloat64(),
			string(r.Currency),
			r.Rate.InexactFloat64(),
			r.Converted.InexactFloat64(),
			paid,
		}
		if err := f.SetSheetRow(SheetExpenses, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	totalRow := []any{"Total", "", "", "", "", "", "", s.Total.InexactFloat64()}
	if err := f.SetSheetRow(SheetExpenses, fmt.Sprintf("A%d", len(s.Rows)+2), &totalRow); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetExpenses, "B", "D", 24)

	if _, err := f.NewSheet(SheetCategories); err != nil {
		return nil, err
	}
	catHeader := []any{"Categoria", "Total (" + string(currency.BaseCurrency) + ")"}
	if err := f.SetSheetRow(SheetCategories, "A1", &catHeader); err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(s.ByCategory))
	for c := range s.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for i, c := range categories {
		row := []any{c, s.ByCategory[c].InexactFloat64()}
		if err := f.SetSheetRow(SheetCategories, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(SheetCategories, "A", "A", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
