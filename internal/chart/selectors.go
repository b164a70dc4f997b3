package chart

// Selectors locates the chart elements on the rendered page.
type Selectors struct {
	// Sentinel is the element whose text appears only after client-side
	// rendering finished: the first-ranked entry's description.
	Sentinel     string `yaml:"sentinel"`
	Row          string `yaml:"row"`
	CurrentRank  string `yaml:"current_rank"`
	PreviousRank string `yaml:"previous_rank"`
	Title        string `yaml:"title"`
	Artist       string `yaml:"artist"`
	PlayAll      string `yaml:"play_all"`
}

// DefaultSelectors returns the selectors for the KKBOX chart markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Sentinel:     "li.charts-list-row:first-child .charts-list-desc",
		Row:          "li.charts-list-row",
		CurrentRank:  "span.charts-list-rank",
		PreviousRank: "span.charts-list-prev-rank",
		Title:        "span.charts-list-song",
		Artist:       "span.charts-list-artist",
		PlayAll:      "a.btn-preview-all",
	}
}
