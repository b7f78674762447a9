package core

import "sort"

// YearOverview aggregates the snapshots of a year.
type YearOverview struct {
	Year          int
	Months        int
	TotalIncome   Money
	TotalExpenses Money
	Net           Money
	LatestAssets  Money
	LatestMonth   int // 0 when the year has no snapshots
}

// SortSnapshots orders snapshots chronologically in place.
func SortSnapshots(items []Snapshot) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Year != items[j].Year {
			return items[i].Year < items[j].Year
		}
		return items[i].Month < items[j].Month
	})
}

// Summarize folds snapshots of one year into an overview. Snapshots from
// other years are ignored.
func Summarize(year int, items []Snapshot) YearOverview {
	ov := YearOverview{Year: year}
	for _, s := range items {
		if s.Year != year {
			continue
		}
		ov.Months++
		ov.TotalIncome.Cents += s.Income.Cents
		ov.TotalExpenses.Cents += s.Expenses.Cents
		if s.Month > ov.LatestMonth {
			ov.LatestMonth = s.Month
			ov.LatestAssets = s.Assets
		}
	}
	ov.Net = ov.TotalIncome.Sub(ov.TotalExpenses)
	return ov
}
