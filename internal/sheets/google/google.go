package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"agencia/internal/core"
	ports "agencia/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetBase is the sheet name suffix; the year is prefixed per sheet.
const DefaultSheetBase = "Finance"

// financeHeader is written to new sheets and expected when reading.
var financeHeader = []any{"Month", "Income", "Expenses", "Assets", "Balance"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Finance"); code prefixes year.
	sheetBase string
}

// Ensure interface conformance
var _ ports.SnapshotStore = (*Client)(nil)

// Options configures the Sheets client. One of CredentialsJSON,
// CredentialsFile or GOOGLE_APPLICATION_CREDENTIALS must provide a service
// account key.
type Options struct {
	SpreadsheetID   string
	SheetBase       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.SheetBase)
	if base == "" {
		base = DefaultSheetBase
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: base}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(opts.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(opts.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SheetName returns the finance sheet of a year, e.g. "2025 Finance".
func (c *Client) SheetName(year int) string {
	return yearPrefixedName(c.sheetBase, year)
}

// ListSnapshots reads the finance sheet of the year. A missing sheet is an
// empty year.
func (c *Client) ListSnapshots(ctx context.Context, year int) ([]core.Snapshot, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	exists, err := c.sheetExists(ctx, c.SheetName(year))
	if err != nil {
		return nil, err
	}
	if !exists {
		return []core.Snapshot{}, nil
	}
	rng := fmt.Sprintf("%s!A1:E13", quoteSheet(c.SheetName(year)))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseFinanceSheet(resp.Values, year)
}

// GetSnapshot returns one month of the year's sheet.
func (c *Client) GetSnapshot(ctx context.Context, year, month int) (core.Snapshot, error) {
	items, err := c.ListSnapshots(ctx, year)
	if err != nil {
		return core.Snapshot{}, err
	}
	for _, it := range items {
		if it.Month == month {
			return it, nil
		}
	}
	return core.Snapshot{}, core.ErrNotFound
}

// RecordSnapshot updates the row of the snapshot month or appends one,
// creating the year's sheet with its header when needed.
func (c *Client) RecordSnapshot(ctx context.Context, s core.Snapshot) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := c.SheetName(s.Year)
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:A", quoteSheet(sheet))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read months of %s: %w", sheet, err)
	}
	row := findMonthRow(resp.Values, s.Month)
	if row == 0 {
		row = len(resp.Values) + 1
	}

	ref := fmt.Sprintf("%s!A%d:E%d", quoteSheet(sheet), row, row)
	vr := &gsheet.ValueRange{Values: [][]any{snapshotRow(s)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", ref, err)
	}
	return ref, nil
}

// ListYears returns the years that have a finance sheet.
func (c *Client) ListYears(ctx context.Context) ([]int, error) {
	titles, err := c.sheetTitles(ctx)
	if err != nil {
		return nil, err
	}
	var years []int
	for _, t := range titles {
		if y, ok := yearOfSheet(t, c.sheetBase); ok {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years, nil
}

func (c *Client) sheetTitles(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (c *Client) sheetExists(ctx context.Context, name string) (bool, error) {
	titles, err := c.sheetTitles(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range titles {
		if t == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) ensureSheet(ctx context.Context, name string) error {
	exists, err := c.sheetExists(ctx, name)
	if err != nil || exists {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	hdr := fmt.Sprintf("%s!A1:E1", quoteSheet(name))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, hdr, &gsheet.ValueRange{Values: [][]any{financeHeader}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	slog.InfoContext(ctx, "Created finance sheet", "sheet", name)
	return nil
}

func snapshotRow(s core.Snapshot) []any {
	return []any{s.Month, s.Income.Units(), s.Expenses.Units(), s.Assets.Units(), s.Balance.Units()}
}

// findMonthRow returns the 1-based row whose first cell is month, or 0.
func findMonthRow(values [][]interface{}, month int) int {
	for i, row := range values {
		if len(row) == 0 || i == 0 {
			continue
		}
		if m, ok := parseMonth(fmt.Sprint(row[0])); ok && m == month {
			return i + 1
		}
	}
	return 0
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// quoteSheet wraps a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

// yearOfSheet extracts the year from a "<year> <base>" title.
func yearOfSheet(title, base string) (int, bool) {
	y, rest, ok := strings.Cut(strings.TrimSpace(title), " ")
	if !ok || !strings.EqualFold(strings.TrimSpace(rest), strings.TrimSpace(base)) {
		return 0, false
	}
	year, err := strconv.Atoi(y)
	if err != nil || core.ValidateYear(year) != nil {
		return 0, false
	}
	return year, true
}
