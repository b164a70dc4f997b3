package model

// TargetDate is the chart day requested by the caller. Month and Day are
// always two characters wide; Year is used as given.
type TargetDate struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
}

// String renders the date the way the chart endpoint expects it (YYYY-MM-DD).
func (d TargetDate) String() string {
	return d.Year + "-" + d.Month + "-" + d.Day
}

// ChartRow is one ranked entry as displayed on the chart page. Ranks are kept
// as the raw text because the page uses tokens such as "NEW".
type ChartRow struct {
	CurrentRank  string `json:"current_rank"`
	PreviousRank string `json:"previous_rank"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
}
