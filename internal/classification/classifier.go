// Package classification maps raw transactions to spending categories.
package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/soundcu/benefit-engine/internal/model"
)

// Pattern associates a merchant regex with a spending category.
type Pattern struct {
	Name     string
	Category model.Category
	Regex    string
	Priority int // Higher priority patterns are checked first
}

// compiledPattern holds a compiled regex pattern with metadata.
type compiledPattern struct {
	regex *regexp.Regexp
	Pattern
}

// Classifier implements deterministic, keyword-based category assignment.
// Classify is total: malformed merchant data routes to Other, never an error.
type Classifier struct {
	patterns []compiledPattern
	mu       sync.RWMutex
}

// New creates a classifier with the given patterns.
func New(patterns []Pattern) (*Classifier, error) {
	compiled, err := compile(patterns)
	if err != nil {
		return nil, err
	}
	return &Classifier{patterns: compiled}, nil
}

// NewDefault creates a classifier with the built-in merchant patterns.
func NewDefault() *Classifier {
	c, err := New(DefaultPatterns())
	if err != nil {
		// The built-in patterns are compile-tested; reaching this is a bug.
		panic(fmt.Sprintf("default patterns failed to compile: %v", err))
	}
	return c
}

func compile(patterns []Pattern) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))

	for _, p := range patterns {
		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr // Case-insensitive by default
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		compiled = append(compiled, compiledPattern{
			Pattern: p,
			regex:   regex,
		})
	}

	// Stable sort keeps insertion order between equal priorities so
	// classification stays deterministic across runs.
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

// Classify assigns exactly one category to the transaction. Same input
// always yields the same category; unmatched input yields Other.
func (c *Classifier) Classify(txn model.Transaction) model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// A usable hint from the source wins over keyword matching.
	if hint := model.Category(strings.TrimSpace(txn.RawCategoryHint)); hint.Valid() {
		return hint
	}

	searchText := strings.ToLower(strings.TrimSpace(
		txn.MerchantName + " " + txn.RawCategoryHint))
	if searchText == "" {
		return model.CategoryOther
	}

	for _, pattern := range c.patterns {
		if pattern.regex.MatchString(searchText) {
			return pattern.Category
		}
	}

	return model.CategoryOther
}

// UpdatePatterns replaces the classifier's patterns.
func (c *Classifier) UpdatePatterns(patterns []Pattern) error {
	compiled, err := compile(patterns)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.patterns = compiled
	c.mu.Unlock()

	return nil
}

// PatternCount returns the number of loaded patterns.
func (c *Classifier) PatternCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.patterns)
}
