package config

import (
	"fmt"
	"path/filepath"
)

// DatasetConfig describes one input CSV and how each binary treats it.
type DatasetConfig struct {
	// Name keys the dataset in every output, e.g. "fb_ads".
	Name string `yaml:"name" validate:"required"`
	// Label is the human readable title used in console previews.
	Label string `yaml:"label"`
	// File is the CSV path; relative paths resolve against the data directory.
	File string `yaml:"file" validate:"required"`
	// GroupKeys lists the key-column sets for grouped statistics. Column names
	// are matched after header normalization (trimmed, lower-cased).
	GroupKeys [][]string `yaml:"group_keys" validate:"dive,min=1,dive,required"`
	// NumericColumns: the first gets a histogram, the second a boxplot.
	NumericColumns []string `yaml:"numeric_columns" validate:"max=2,dive,required"`
	// CategoricalColumns each get a top-N bar chart.
	CategoricalColumns []string `yaml:"categorical_columns" validate:"dive,required"`
}

// DisplayName returns Label, falling back to Name.
func (d DatasetConfig) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// ResolvePath returns the dataset file path resolved against dataDir.
func (d DatasetConfig) ResolvePath(dataDir string) string {
	if filepath.IsAbs(d.File) {
		return d.File
	}
	return filepath.Join(dataDir, d.File)
}

func (d DatasetConfig) check() error {
	seen := make(map[string]bool, len(d.GroupKeys))
	for _, keys := range d.GroupKeys {
		name := fmt.Sprint(keys)
		if seen[name] {
			return fmt.Errorf("duplicate group keys %v", keys)
		}
		seen[name] = true
	}
	return nil
}

// DefaultDatasets returns the three fixed datasets the binaries run against
// when no configuration file supplies its own list.
func DefaultDatasets() []DatasetConfig {
	return []DatasetConfig{
		{
			Name:               "fb_ads",
			Label:              "Facebook Ads",
			File:               "2024_fb_ads_president_scored_anon.csv",
			GroupKeys:          [][]string{{"page_id"}, {"page_id", "ad_id"}},
			NumericColumns:     []string{"estimated_spend", "estimated_impressions"},
			CategoricalColumns: []string{"publisher_platforms", "currency"},
		},
		{
			Name:               "fb_posts",
			Label:              "Facebook Posts",
			File:               "2024_fb_posts_president_scored_anon.csv",
			GroupKeys:          [][]string{{"facebook_id"}, {"facebook_id", "post_id"}},
			NumericColumns:     []string{"Likes", "Overperforming Score"},
			CategoricalColumns: []string{"Type", "Page Category"},
		},
		{
			Name:               "tw_posts",
			Label:              "Twitter Posts",
			File:               "2024_tw_posts_president_scored_anon.csv",
			GroupKeys:          [][]string{{"twitter_handle"}, {"twitter_handle", "post_id"}},
			NumericColumns:     []string{"likeCount", "retweetCount"},
			CategoricalColumns: []string{"lang", "source"},
		},
	}
}
