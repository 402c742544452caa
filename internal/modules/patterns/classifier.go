// Package patterns resolves free-text pattern labels into pattern categories.
package patterns

import (
	"golang.org/x/text/cases"

	"github.com/aristath/turnips/internal/domain"
)

// DefaultMaxDistance is the edit-distance threshold for fuzzy matches and the
// minimum label length before fuzzy matching is attempted.
const DefaultMaxDistance = 4

// Options configures a Classifier.
type Options struct {
	MaxDistance       int  `json:"max_distance"`
	UseDistanceMetric bool `json:"use_distance_metric"`
}

// DefaultOptions returns the classifier settings used for community data.
func DefaultOptions() Options {
	return Options{
		MaxDistance:       DefaultMaxDistance,
		UseDistanceMetric: true,
	}
}

// Classifier maps labels onto pattern categories using the alias whitelist,
// falling back to bounded edit distance for labels that miss it.
// A Classifier holds no mutable state and is safe for concurrent use.
type Classifier struct {
	opts Options
}

// NewClassifier creates a classifier. A negative MaxDistance is treated as zero.
func NewClassifier(opts Options) *Classifier {
	if opts.MaxDistance < 0 {
		opts.MaxDistance = 0
	}
	return &Classifier{opts: opts}
}

// Options returns the classifier configuration.
func (c *Classifier) Options() Options {
	return c.opts
}

// Classify resolves label into a category.
// An empty label is PatternEmpty; a label that cannot be resolved is PatternUnknown.
func (c *Classifier) Classify(label string) domain.PatternCategory {
	if len(label) == 0 {
		return domain.PatternEmpty
	}

	// cases.Caser keeps internal state, so a fresh one per call
	normalized := cases.Fold().String(label)

	if p, ok := exactAliases[normalized]; ok {
		return p
	}

	if c.opts.UseDistanceMetric && len([]rune(normalized)) >= c.opts.MaxDistance {
		for _, entry := range aliasTable {
			for _, alias := range entry.aliases {
				if WithinDistance(alias, normalized, c.opts.MaxDistance) {
					return entry.pattern
				}
			}
		}
	}

	return domain.PatternUnknown
}
