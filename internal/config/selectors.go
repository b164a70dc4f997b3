package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"songrank/internal/chart"
)

// LoadSelectors reads a YAML selector file on top of the defaults. Keys left
// out of the file keep their default value. An empty path returns the
// defaults unchanged.
func LoadSelectors(path string) (chart.Selectors, error) {
	selectors := chart.DefaultSelectors()
	if path == "" {
		return selectors, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return chart.Selectors{}, fmt.Errorf("reading selectors file: %w", err)
	}
	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return chart.Selectors{}, fmt.Errorf("parsing selectors file %s: %w", path, err)
	}
	if err := validateSelectors(selectors); err != nil {
		return chart.Selectors{}, err
	}
	return selectors, nil
}

func validateSelectors(s chart.Selectors) error {
	required := []struct {
		name  string
		value string
	}{
		{"sentinel", s.Sentinel},
		{"row", s.Row},
		{"current_rank", s.CurrentRank},
		{"previous_rank", s.PreviousRank},
		{"title", s.Title},
		{"artist", s.Artist},
	}
	for _, r := range required {
		if r.value == "" {
			return &Error{Field: "selectors." + r.name, Msg: "must not be empty"}
		}
	}
	return nil
}
