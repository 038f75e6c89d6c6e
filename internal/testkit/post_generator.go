package testkit

import (
	"fmt"
	"math/rand"
	"strings"

	"wordmetrics/domain/dataset"
	"wordmetrics/internal/literal"
)

// PostGeneratorConfig configures the synthetic social-post generator
type PostGeneratorConfig struct {
	PostCount            int      `json:"post_count"`
	AvgStatementsPerPost float64  `json:"avg_statements_per_post"`
	Tactics              []string `json:"tactics"`
	FireRate             float64  `json:"fire_rate"`
	WithEngagement       bool     `json:"with_engagement"`
	// MalformedRate is the share of found-terms cells replaced with text
	// that is not a list literal.
	MalformedRate float64 `json:"malformed_rate"`
	// VerbatimTermsColumns names found-terms columns after the full
	// classifier name instead of stripping the has_ prefix.
	VerbatimTermsColumns bool  `json:"verbatim_terms_columns"`
	Seed                 int64 `json:"seed"`
}

// DefaultPostConfig returns sensible defaults for post data generation
func DefaultPostConfig() PostGeneratorConfig {
	return PostGeneratorConfig{
		PostCount:            40,
		AvgStatementsPerPost: 3,
		Tactics:              []string{"has_urgency", "has_authority", "has_scarcity"},
		FireRate:             0.3,
		WithEngagement:       true,
		MalformedRate:        0.05,
		Seed:                 42,
	}
}

var vocabulary = map[string][]string{
	"has_urgency":   {"now", "today", "hurry", "immediately", "fast"},
	"has_authority": {"official", "expert", "verified", "certified"},
	"has_scarcity":  {"limited", "last", "exclusive", "rare"},
}

var fillerWords = []string{
	"the", "offer", "is", "for", "you", "and", "your", "family", "click",
	"link", "below", "this", "deal", "works", "great", "friends", "see",
}

// PostDataGenerator generates annotated social-media statements grouped by post
type PostDataGenerator struct {
	config PostGeneratorConfig
	rng    *rand.Rand
}

// NewPostDataGenerator creates a new post data generator
func NewPostDataGenerator(config PostGeneratorConfig) *PostDataGenerator {
	return &PostDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// TermsColumn names the found-terms column the generator writes for tactic.
func (g *PostDataGenerator) TermsColumn(tactic string) string {
	if g.config.VerbatimTermsColumns {
		return "found_" + tactic + "_terms"
	}
	return "found_" + strings.TrimPrefix(tactic, "has_") + "_terms"
}

// Headers returns the generated column layout.
func (g *PostDataGenerator) Headers() []string {
	headers := []string{"post_id", "statement"}
	if g.config.WithEngagement {
		headers = append(headers, "number_likes", "number_comments")
	}
	for _, tactic := range g.config.Tactics {
		headers = append(headers, tactic, g.TermsColumn(tactic))
	}
	return headers
}

// GenerateDataset generates one row per statement. Found-terms cells hold
// the printed form of a list, as they do in annotation exports.
func (g *PostDataGenerator) GenerateDataset() *dataset.Dataset {
	var rows []dataset.Row
	for p := 0; p < g.config.PostCount; p++ {
		postID := fmt.Sprintf("post_%04d", p+1)
		likes := int64(g.rng.Intn(500))
		comments := int64(g.rng.Intn(80))

		n := 1 + g.rng.Intn(int(2*g.config.AvgStatementsPerPost))
		for s := 0; s < n; s++ {
			rows = append(rows, g.statementRow(postID, likes, comments))
		}
	}
	ds := dataset.New(g.Headers(), rows)
	ds.Source = "testkit"
	return ds
}

func (g *PostDataGenerator) statementRow(postID string, likes, comments int64) dataset.Row {
	row := dataset.Row{"post_id": dataset.NewStringValue(postID)}
	if g.config.WithEngagement {
		row["number_likes"] = dataset.NewIntValue(likes)
		row["number_comments"] = dataset.NewIntValue(comments)
	}

	fillers := 3 + g.rng.Intn(8)
	words := make([]string, 0, fillers+4)
	for i := 0; i < fillers; i++ {
		words = append(words, fillerWords[g.rng.Intn(len(fillerWords))])
	}

	for _, tactic := range g.config.Tactics {
		var found []string
		if g.rng.Float64() < g.config.FireRate {
			vocab := vocabulary[tactic]
			if len(vocab) == 0 {
				vocab = []string{strings.TrimPrefix(tactic, "has_")}
			}
			hits := 1 + g.rng.Intn(2)
			for i := 0; i < hits; i++ {
				term := vocab[g.rng.Intn(len(vocab))]
				found = append(found, term)
				words = append(words, term)
			}
		}

		fired := int64(0)
		if len(found) > 0 {
			fired = 1
		}
		row[tactic] = dataset.NewIntValue(fired)

		cell := literal.FormatList(found)
		if g.rng.Float64() < g.config.MalformedRate {
			cell = "not a list"
		}
		row[g.TermsColumn(tactic)] = dataset.NewStringValue(cell)
	}

	g.rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	row["statement"] = dataset.NewStringValue(strings.Join(words, " "))
	return row
}

// ScenarioDataset is the three-row fixture used across packages: two
// statements of post A and one of post B with a single classifier has_x.
func ScenarioDataset() *dataset.Dataset {
	return dataset.FromRecords(
		[]string{"post_id", "text", "has_x", "found_has_x_terms"},
		[]map[string]interface{}{
			{"post_id": "A", "text": "great product", "has_x": 1, "found_has_x_terms": `["great"]`},
			{"post_id": "A", "text": "i love it", "has_x": 0, "found_has_x_terms": "[]"},
			{"post_id": "B", "text": "meh", "has_x": 1, "found_has_x_terms": `["meh"]`},
		},
	)
}
