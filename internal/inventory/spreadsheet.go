package inventory

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ledger-backend/internal/ledger"

	"github.com/xuri/excelize/v2"
)

// itemColumns xlsx katalog dosyasında kolon sırası
type itemColumns struct {
	name, unit, weight int
}

var positionalColumns = itemColumns{name: 0, unit: 1, weight: 2}

// detectHeader ilk satır başlık satırıysa kolonları isimden bulur.
func detectHeader(row []string) (itemColumns, bool) {
	cols := itemColumns{name: -1, unit: -1, weight: -1}
	for i, cell := range row {
		h := strings.ToUpper(strings.TrimSpace(cell))
		switch {
		case strings.Contains(h, "ITEM") || h == "NAME" || strings.Contains(h, "MATERIAL"):
			if cols.name < 0 {
				cols.name = i
			}
		case h == "UNIT" || h == "UOM" || strings.Contains(h, "UNIT OF"):
			cols.unit = i
		case h == "PUW" || strings.Contains(h, "WEIGHT"):
			cols.weight = i
		}
	}
	if cols.name < 0 {
		return positionalColumns, false
	}
	return cols, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseItemSheet ilk sheet'teki satırları katalog girdisine çevirir. Sayı
// olmayan ağırlık değerleri satır numarasıyla hata listesine yazılır.
func parseItemSheet(r io.Reader) ([]ledger.ItemInput, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("excel file could not be read: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("sheet could not be read: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("excel file is empty")
	}

	cols, header := detectHeader(rows[0])
	start := 0
	if header {
		start = 1
	}

	var (
		items   []ledger.ItemInput
		badRows []string
	)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, cols.name)
		if name == "" {
			continue
		}
		in := ledger.ItemInput{ItemName: name, Unit: cell(row, cols.unit)}
		if w := cell(row, cols.weight); w != "" {
			v, err := strconv.ParseFloat(w, 64)
			if err != nil {
				badRows = append(badRows, fmt.Sprintf("row %d: invalid weight %q", i+1, w))
				continue
			}
			in.PerUnitWeight = v
		}
		items = append(items, in)
	}
	return items, badRows, nil
}

// writeReportSheet rapor satırlarını tek sheet'lik xlsx olarak yazar.
func writeReportSheet(rep *ledger.Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	weighted := rep.Domain.TracksWeight()

	header := []interface{}{"Item", "Unit", "Total Issued", "Total Returned", "Net Issued", "In Field", "Current Stock"}
	if weighted {
		header = append(header, "Current Weight", "Status")
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, it := range rep.Data {
		values := []interface{}{it.ItemName, it.Unit, it.TotalIssued, it.TotalReturned, it.NetIssued, it.InField, it.CurrentStock}
		if weighted {
			values = append(values, it.CurrentWeight, it.Status)
		}
		addr, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, addr, &values); err != nil {
			return nil, err
		}
		row++
	}

	totals := []interface{}{"TOTAL", "", rep.Summary.TotalIssued, rep.Summary.TotalReturned,
		rep.Summary.TotalIssued - rep.Summary.TotalReturned, rep.Summary.TotalInField, rep.Summary.TotalStock}
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, addr, &totals); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
