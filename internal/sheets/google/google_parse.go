package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"agencia/internal/core"
)

// monthNames maps the month abbreviations seen in finance sheets (English,
// Portuguese, Italian) to month numbers.
var monthNames = map[string]int{
	"jan": 1, "feb": 2, "fev": 2, "mar": 3, "apr": 4, "abr": 4, "may": 5, "mai": 5, "mag": 5,
	"jun": 6, "giu": 6, "jul": 7, "lug": 7, "aug": 8, "ago": 8, "sep": 9, "set": 9,
	"oct": 10, "out": 10, "ott": 10, "nov": 11, "dec": 12, "dez": 12, "dic": 12, "gen": 1,
}

// parseFinanceSheet converts a values matrix (as returned by Sheets API)
// into the snapshots of a year. The first row must carry the Month, Income,
// Expenses and Assets headers; Balance is optional and derived when empty.
// Rows with an unreadable month are skipped.
func parseFinanceSheet(values [][]interface{}, year int) ([]core.Snapshot, error) {
	if len(values) == 0 {
		return []core.Snapshot{}, nil
	}
	headers := toStrings(values[0])
	colMonth := indexOf(headers, "Month")
	colIncome := indexOf(headers, "Income")
	colExpenses := indexOf(headers, "Expenses")
	colAssets := indexOf(headers, "Assets")
	colBalance := indexOf(headers, "Balance")
	if colMonth == -1 || colIncome == -1 || colExpenses == -1 || colAssets == -1 {
		missing := make([]string, 0, 4)
		for i, idx := range []int{colMonth, colIncome, colExpenses, colAssets} {
			if idx == -1 {
				missing = append(missing, fmt.Sprint(financeHeader[i]))
			}
		}
		return nil, fmt.Errorf("unexpected finance header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	byMonth := map[int]core.Snapshot{}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		month, ok := parseMonth(safeGet(row, colMonth))
		if !ok {
			continue
		}
		income, _ := parseAmountToCents(safeGet(row, colIncome))
		expenses, _ := parseAmountToCents(safeGet(row, colExpenses))
		assets, _ := parseAmountToCents(safeGet(row, colAssets))
		s := core.NewSnapshot(year, month,
			core.Money{Cents: income}, core.Money{Cents: expenses}, core.Money{Cents: assets})
		if balance, ok := parseAmountToCents(safeGet(row, colBalance)); ok {
			s.Balance = core.Money{Cents: balance}
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		byMonth[month] = s
	}

	out := make([]core.Snapshot, 0, len(byMonth))
	for m := 1; m <= 12; m++ {
		if s, ok := byMonth[m]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// parseMonth accepts a month number or a three-letter month name.
func parseMonth(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		m := int(f)
		if float64(m) != f || m < 1 || m > 12 {
			return 0, false
		}
		return m, true
	}
	if len(s) < 3 {
		return 0, false
	}
	m, ok := monthNames[strings.ToLower(s[:3])]
	return m, ok
}

// parseAmountToCents reads a numeric cell. Unformatted values arrive as plain
// numbers; a decimal comma is accepted too.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f * 100)), true
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
