package report

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/compat-todo/compat-todo/internal/compat"
	"github.com/compat-todo/compat-todo/internal/profile"
)

const defaultSheetName = "Sheet1"

var workbookHeader = []string{"Game_Code", "Game_Name", "Issues", "Statuses", "Platforms", "Search"}

// NewWorkbook creates a spreadsheet with one sheet per generated page.
func (r *Renderer) NewWorkbook(pages []PageSummary, cl *compat.Classification) (*excelize.File, error) {
	book := excelize.NewFile()
	first := -1
	for _, page := range pages {
		group := cl.Missing[page.Platform.Tag]
		if page.Kind == KindOutdated {
			group = cl.Outdated[page.Platform.Tag]
		}
		name := sheetName(page.Kind, page.Platform)
		idx, err := book.NewSheet(name)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create sheet %s", name)
		}
		if first < 0 {
			first = idx
		}
		if err := r.populateSheet(book, name, group); err != nil {
			return nil, err
		}
	}
	if first >= 0 {
		book.SetActiveSheet(first)
		if err := book.DeleteSheet(defaultSheetName); err != nil {
			log.Warnf("unable to remove default sheet: %v", err)
		}
	}
	return book, nil
}

func sheetName(kind Kind, platform profile.PlatformTarget) string {
	return fmt.Sprintf("%s-%s", kind, platform.Page)
}

// populateSheet writes the header and one row per product.
func (r *Renderer) populateSheet(book *excelize.File, sheet string, group []*compat.ProductRecord) error {
	rows := [][]interface{}{}
	header := make([]interface{}, 0, len(workbookHeader))
	for _, h := range workbookHeader {
		header = append(header, h)
	}
	rows = append(rows, header)

	for _, rec := range group {
		statuses, platforms := "", ""
		for i := range rec.Issues {
			if i > 0 {
				statuses += "; "
				platforms += "; "
			}
			statuses += rec.Issues[i].Status()
			platforms += rec.Issues[i].Platform()
		}
		rows = append(rows, []interface{}{
			rec.ID, rec.Name, len(rec.Issues), statuses, platforms, r.searchURL(rec.ID),
		})
	}

	for rowN, row := range rows {
		for colN, value := range row {
			cell, err := excelize.CoordinatesToCellName(colN+1, rowN+1)
			if err != nil {
				return err
			}
			if err := book.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrapf(err, "unable to write cell %s!%s", sheet, cell)
			}
		}
	}
	return nil
}
