package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankCounts(t *testing.T) {
	counts := map[string]int{"zeta": 3, "alpha": 3, "beta": 5, "gamma": 1}

	ranked := RankCounts(counts, 2, 0)
	assert.Equal(t, []Count{{"beta", 5}, {"alpha", 3}, {"zeta", 3}}, ranked)

	assert.Equal(t, []string{"beta", "alpha"}, RankTerms(counts, 2, 2))
	assert.Empty(t, RankTerms(counts, 10, 5))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"Okay so", "listen"}, Dedupe([]string{"Okay so", "", "okay SO", "listen", "Listen"}))
	assert.Empty(t, Dedupe(nil))
}
