package cli

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/photofeed/server/internal/models"
)

const untitled = "(untitled)"

// PhotoTable renders photos as index, id, title and URL columns
type PhotoTable struct {
	table *tablewriter.Table
	rows  [][]string
}

// NewPhotoTable creates a table writing to w
func NewPhotoTable(w io.Writer) *PhotoTable {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
	return &PhotoTable{table: table}
}

// Add appends photos, numbering them from offset
func (t *PhotoTable) Add(offset int, photos []models.Photo) {
	for i, p := range photos {
		t.rows = append(t.rows, []string{
			strconv.Itoa(offset + i),
			p.ID,
			p.DisplayTitle(untitled),
			p.DefaultURL(),
		})
	}
}

// Render outputs the table
func (t *PhotoTable) Render() error {
	t.table.Header([]string{"#", "ID", "Title", "URL"})
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}
