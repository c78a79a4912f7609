package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/modurecruit/snspick/internal/selection"
	"github.com/modurecruit/snspick/internal/store"
)

// Result column headers, located by substring match so operators can use
// richer header text ("선정결과 (자동)").
const (
	HeaderResult = "선정결과"
	HeaderReason = "선정사유"
)

// SheetConfig identifies a campaign sheet and how its columns map to
// applicant fields.
type SheetConfig struct {
	SheetID   string `json:"sheetId" yaml:"sheet_id"`
	SheetName string `json:"sheetName" yaml:"sheet_name"`
	// HeaderRow is the 1-based row holding column headers. Default: 1.
	HeaderRow int `json:"headerRow" yaml:"header_row"`
	// ColumnMapping maps applicant fields (email, name, naverBlog,
	// instagram, threads) to header substrings.
	ColumnMapping map[string]string `json:"columnMapping" yaml:"column_mapping"`
}

func (c *SheetConfig) defaults() {
	if c.HeaderRow <= 0 {
		c.HeaderRow = 1
	}
	if c.ColumnMapping == nil {
		c.ColumnMapping = map[string]string{
			"email":     "이메일",
			"name":      "이름",
			"naverBlog": "블로그",
			"instagram": "인스타",
			"threads":   "스레드",
		}
	}
}

// Validate checks the parts a request must supply.
func (c *SheetConfig) Validate() error {
	if c.SheetID == "" {
		return fmt.Errorf("sheets: sheetId is required")
	}
	if c.SheetName == "" {
		return fmt.Errorf("sheets: sheetName is required")
	}
	return nil
}

// Sheet is a loaded view of a campaign sheet: headers plus data rows.
type Sheet struct {
	Config  SheetConfig
	Headers []string
	// Rows holds data rows; Rows[i] is sheet row HeaderRow+1+i.
	Rows [][]string
}

// Load reads the whole sheet and splits headers from data.
func Load(ctx context.Context, c *Client, token string, cfg SheetConfig) (*Sheet, error) {
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows, err := c.Values(ctx, token, cfg.SheetID, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) < cfg.HeaderRow {
		return nil, fmt.Errorf("sheets: sheet has no header row %d", cfg.HeaderRow)
	}

	return &Sheet{
		Config:  cfg,
		Headers: rows[cfg.HeaderRow-1],
		Rows:    rows[cfg.HeaderRow:],
	}, nil
}

// FindColumn returns the 1-based index of the first header containing
// substr, or 0.
func (s *Sheet) FindColumn(substr string) int {
	for i, h := range s.Headers {
		if strings.Contains(h, substr) {
			return i + 1
		}
	}
	return 0
}

// cell reads a 1-based column from a row, tolerating ragged rows.
func cell(row []string, col int) string {
	if col <= 0 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

// Applicants maps the data rows into applicant records. Rows without an
// email are skipped (blank lines, notes).
func (s *Sheet) Applicants() []*store.Applicant {
	cols := map[string]int{}
	for field, header := range s.Config.ColumnMapping {
		cols[field] = s.FindColumn(header)
	}

	var out []*store.Applicant
	for i, row := range s.Rows {
		email := cell(row, cols["email"])
		if email == "" {
			continue
		}
		out = append(out, &store.Applicant{
			Email:        email,
			Name:         cell(row, cols["name"]),
			NaverBlogURL: cell(row, cols["naverBlog"]),
			InstagramURL: cell(row, cols["instagram"]),
			ThreadsURL:   cell(row, cols["threads"]),
			RowIndex:     s.Config.HeaderRow + 1 + i,
		})
	}
	return out
}

// Writer writes selection decisions back into the sheet.
type Writer struct {
	client *Client
	token  string
	sheet  *Sheet

	resultCol int
	reasonCol int
}

// NewWriter locates the 선정결과/선정사유 columns, appending them to the
// header row when absent, and returns a Writer bound to the sheet.
func NewWriter(ctx context.Context, c *Client, token string, sheet *Sheet) (*Writer, error) {
	w := &Writer{client: c, token: token, sheet: sheet}

	w.resultCol = sheet.FindColumn(HeaderResult)
	w.reasonCol = sheet.FindColumn(HeaderReason)

	next := len(sheet.Headers) + 1
	var newHeaders []string
	if w.resultCol == 0 {
		w.resultCol = next
		next++
		newHeaders = append(newHeaders, HeaderResult)
	}
	if w.reasonCol == 0 {
		w.reasonCol = next
		newHeaders = append(newHeaders, HeaderReason)
	}

	if len(newHeaders) > 0 {
		startCol := len(sheet.Headers) + 1
		cells := fmt.Sprintf("%s%d:%s%d",
			ColumnLetter(startCol), sheet.Config.HeaderRow,
			ColumnLetter(startCol+len(newHeaders)-1), sheet.Config.HeaderRow)
		rng := A1Range(sheet.Config.SheetName, cells)
		if err := c.Update(ctx, token, sheet.Config.SheetID, rng, [][]string{newHeaders}); err != nil {
			return nil, fmt.Errorf("append result headers: %w", err)
		}
		sheet.Headers = append(sheet.Headers, newHeaders...)
	}

	return w, nil
}

// WriteDecision writes 선정/비선정 and the reason into an applicant's row.
func (w *Writer) WriteDecision(ctx context.Context, rowIndex int, selected bool, reason string) error {
	if rowIndex <= 0 {
		return fmt.Errorf("sheets: applicant has no sheet row")
	}
	label := selection.LabelRejected
	if selected {
		label = selection.LabelSelected
	}

	lo, hi := w.resultCol, w.reasonCol
	if lo > hi {
		lo, hi = hi, lo
	}
	// One contiguous update covering both columns; cells between them (if
	// an operator inserted one) must be preserved, so write the two cells
	// separately when they are not adjacent.
	if hi-lo == 1 {
		values := []string{label, reason}
		if w.resultCol > w.reasonCol {
			values = []string{reason, label}
		}
		cells := fmt.Sprintf("%s%d:%s%d", ColumnLetter(lo), rowIndex, ColumnLetter(hi), rowIndex)
		return w.client.Update(ctx, w.token, w.sheet.Config.SheetID,
			A1Range(w.sheet.Config.SheetName, cells), [][]string{values})
	}

	resultCell := fmt.Sprintf("%s%d", ColumnLetter(w.resultCol), rowIndex)
	if err := w.client.Update(ctx, w.token, w.sheet.Config.SheetID,
		A1Range(w.sheet.Config.SheetName, resultCell), [][]string{{label}}); err != nil {
		return err
	}
	reasonCell := fmt.Sprintf("%s%d", ColumnLetter(w.reasonCol), rowIndex)
	return w.client.Update(ctx, w.token, w.sheet.Config.SheetID,
		A1Range(w.sheet.Config.SheetName, reasonCell), [][]string{{reason}})
}
