package office

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// extractWorkbook flattens every sheet into tab-separated rows.
func extractWorkbook(path string) (string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalService, "open workbook", err)
	}
	defer book.Close()

	var builder strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrExternalService, fmt.Sprintf("read sheet %s", sheet), err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			builder.WriteString(line)
			builder.WriteString("\n")
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
