package models

// LabelCount is a generic (label, count) aggregation row, e.g. top
// search queries or top downloaded titles.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DailyCount is one day of an activity time series. Date is YYYY-MM-DD.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardStats is the read-only projection behind the dashboard
// overview page.
type DashboardStats struct {
	TodaySearches    int            `json:"today_searches"`
	TodayDownloads   int            `json:"today_downloads"`
	TotalManualLinks int            `json:"total_manual_links"`
	UnresolvedErrors int            `json:"unresolved_errors"`
	TopSearches      []LabelCount   `json:"top_searches"`
	TopDownloads     []LabelCount   `json:"top_downloads"`
	Sources          []SourceHealth `json:"sources"`
	RecentErrors     []ErrorEvent   `json:"recent_errors"`
}

// ActivityChart holds daily search and download series for the chart
// endpoint.
type ActivityChart struct {
	Searches  []DailyCount `json:"searches"`
	Downloads []DailyCount `json:"downloads"`
}

// SearchAnalytics is the deeper search report: most frequent queries,
// the daily series, and queries that found nothing.
type SearchAnalytics struct {
	TopQueries    []LabelCount `json:"top_queries"`
	DailySearches []DailyCount `json:"daily_searches"`
	ZeroResults   []LabelCount `json:"zero_results"`
}
