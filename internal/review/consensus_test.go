package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func vote(provider string, verdict Verdict, confidence float64) *Review {
	return &Review{Provider: provider, Verdict: verdict, Confidence: confidence}
}

func TestNewCalculatorThresholdFallback(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"valid", 0.75, 0.75},
		{"zero falls back", 0, DefaultThreshold},
		{"negative falls back", -1, DefaultThreshold},
		{"above one falls back", 1.5, DefaultThreshold},
		{"exactly one kept", 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCalculator(tt.threshold).threshold)
		})
	}
}

func TestCalculateEmptyAndAllAbstain(t *testing.T) {
	calc := NewCalculator(DefaultThreshold)

	c := calc.Calculate(nil)
	assert.Equal(t, VerdictAbstain, c.Verdict)
	assert.True(t, c.NoConsensus)
	assert.Zero(t, c.VotingCount)

	c = calc.Calculate([]*Review{
		vote("claude", VerdictAbstain, 0.5),
		vote("gemini", VerdictErrorTimeout, 0),
		vote("openai", VerdictErrorAuth, 0),
	})
	assert.Equal(t, VerdictAbstain, c.Verdict)
	assert.True(t, c.NoConsensus)
	assert.Equal(t, 0, c.VotingCount)
	assert.Equal(t, 3, c.AbstainCount)
	assert.Equal(t, 3, c.TotalCount)
}

func TestCalculateCriticalOverride(t *testing.T) {
	calc := NewCalculator(DefaultThreshold)

	// One security finding beats four approvals.
	c := calc.Calculate([]*Review{
		vote("a", VerdictApprove, 0.9),
		vote("b", VerdictApprove, 0.9),
		vote("c", VerdictApprove, 0.9),
		vote("d", VerdictApprove, 0.9),
		vote("e", VerdictCriticalVulnerabilities, 0.8),
	})
	assert.Equal(t, VerdictCriticalVulnerabilities, c.Verdict)
	assert.False(t, c.NoConsensus)
	assert.InDelta(t, 0.2, c.AgreementRatio, 1e-9)
	assert.InDelta(t, 0.8, c.Confidence, 1e-9)
}

func TestCalculateSingleVoter(t *testing.T) {
	calc := NewCalculator(DefaultThreshold)

	// The only voting provider decides, abstentions notwithstanding.
	c := calc.Calculate([]*Review{
		vote("claude", VerdictNeedsReview, 0.7),
		vote("gemini", VerdictAbstain, 0.5),
		vote("openai", VerdictErrorNetwork, 0),
	})
	assert.Equal(t, VerdictNeedsReview, c.Verdict)
	assert.False(t, c.NoConsensus)
	assert.Equal(t, 1, c.VotingCount)
	assert.Equal(t, 1.0, c.AgreementRatio)
	assert.InDelta(t, 0.7, c.Confidence, 1e-9)
}

func TestCalculateThresholdMajority(t *testing.T) {
	calc := NewCalculator(0.6)

	// Two of three approve crosses 0.6.
	c := calc.Calculate([]*Review{
		vote("claude", VerdictApprove, 0.9),
		vote("gemini", VerdictApprove, 0.8),
		vote("openai", VerdictNeedsReview, 0.7),
	})
	assert.Equal(t, VerdictApprove, c.Verdict)
	assert.False(t, c.NoConsensus)
	assert.InDelta(t, 2.0/3.0, c.AgreementRatio, 1e-9)
	assert.InDelta(t, 0.85, c.Confidence, 1e-9)
}

func TestCalculateThresholdPrefersLeastSevere(t *testing.T) {
	// With threshold 0.5 both verdicts qualify at two votes each; the
	// less severe one wins the tie.
	calc := NewCalculator(0.5)

	c := calc.Calculate([]*Review{
		vote("a", VerdictApprove, 0.9),
		vote("b", VerdictApprove, 0.9),
		vote("c", VerdictNeedsReview, 0.8),
		vote("d", VerdictNeedsReview, 0.8),
	})
	assert.Equal(t, VerdictApprove, c.Verdict)
	assert.False(t, c.NoConsensus)
}

func TestCalculateNoConsensusFallsBackToMostSevere(t *testing.T) {
	calc := NewCalculator(0.6)

	// 50/50 split below threshold: most severe verdict wins, flagged
	// as no-consensus.
	c := calc.Calculate([]*Review{
		vote("claude", VerdictApprove, 0.9),
		vote("gemini", VerdictNeedsReview, 0.6),
	})
	assert.Equal(t, VerdictNeedsReview, c.Verdict)
	assert.True(t, c.NoConsensus)
	assert.InDelta(t, 0.5, c.AgreementRatio, 1e-9)
	assert.InDelta(t, 0.6, c.Confidence, 1e-9)
}

func TestCalculateOrderIndependent(t *testing.T) {
	calc := NewCalculator(0.6)

	reviews := []*Review{
		vote("claude", VerdictApprove, 0.9),
		vote("gemini", VerdictNeedsReview, 0.6),
		vote("openai", VerdictProvideFeedback, 0.7),
	}
	reversed := []*Review{reviews[2], reviews[1], reviews[0]}

	a := calc.Calculate(reviews)
	b := calc.Calculate(reversed)

	assert.Equal(t, a.Verdict, b.Verdict)
	assert.Equal(t, a.NoConsensus, b.NoConsensus)
	assert.Equal(t, a.AgreementRatio, b.AgreementRatio)
	assert.Equal(t, a.VerdictCounts, b.VerdictCounts)
}

func TestCalculateVerdictCounts(t *testing.T) {
	calc := NewCalculator(0.6)

	c := calc.Calculate([]*Review{
		vote("a", VerdictApprove, 0.9),
		vote("b", VerdictApprove, 0.9),
		vote("c", VerdictErrorTimeout, 0),
	})

	assert.Equal(t, 2, c.VerdictCounts[VerdictApprove])
	assert.Equal(t, 1, c.VerdictCounts[VerdictErrorTimeout])
	assert.Equal(t, 2, c.VotingCount)
	assert.Equal(t, 1, c.AbstainCount)
	assert.Equal(t, 3, c.TotalCount)
}
