package review

// Calculator reduces a set of Reviews to a single consensus verdict.
// It is state-free apart from its configured agreement threshold.
type Calculator struct {
	threshold float64
}

// DefaultThreshold is the agreement ratio a verdict must reach before it
// becomes the consensus.
const DefaultThreshold = 0.6

// NewCalculator creates a Calculator with the given agreement threshold.
// A threshold outside (0, 1] falls back to the default.
func NewCalculator(threshold float64) *Calculator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Calculator{threshold: threshold}
}

// Calculate derives the consensus from all provider reviews. The result is
// a pure function of the review set; arrival order has no effect.
func (c *Calculator) Calculate(reviews []*Review) Consensus {
	consensus := Consensus{
		TotalCount:    len(reviews),
		VerdictCounts: make(map[Verdict]int),
	}

	var voting []*Review
	for _, r := range reviews {
		consensus.VerdictCounts[r.Verdict]++
		if r.Verdict.IsVoting() {
			voting = append(voting, r)
		} else {
			consensus.AbstainCount++
		}
	}
	consensus.VotingCount = len(voting)

	// No usable opinions at all: conservative abstain, never a silent approve.
	if len(voting) == 0 {
		consensus.Verdict = VerdictAbstain
		consensus.NoConsensus = true
		return consensus
	}

	// Security findings are never outvoted.
	for _, r := range voting {
		if r.Verdict == VerdictCriticalVulnerabilities {
			consensus.Verdict = VerdictCriticalVulnerabilities
			consensus.AgreementRatio = ratio(consensus.VerdictCounts[VerdictCriticalVulnerabilities], len(voting))
			consensus.Confidence = meanConfidenceFor(voting, VerdictCriticalVulnerabilities)
			return consensus
		}
	}

	// Single voter: its verdict stands, the threshold is inapplicable at n=1.
	if len(voting) == 1 {
		consensus.Verdict = voting[0].Verdict
		consensus.AgreementRatio = 1.0
		consensus.Confidence = voting[0].Confidence
		return consensus
	}

	// Threshold pass, least severe verdict first.
	for _, v := range thresholdOrder {
		r := ratio(consensus.VerdictCounts[v], len(voting))
		if r >= c.threshold {
			consensus.Verdict = v
			consensus.AgreementRatio = r
			consensus.Confidence = meanConfidenceFor(voting, v)
			return consensus
		}
	}

	// No verdict reached threshold: fall back to the most severe verdict
	// present, not the most common one.
	consensus.NoConsensus = true
	fallback := voting[0].Verdict
	for _, r := range voting[1:] {
		if r.Verdict.MoreSevere(fallback) {
			fallback = r.Verdict
		}
	}
	consensus.Verdict = fallback
	consensus.AgreementRatio = ratio(consensus.VerdictCounts[fallback], len(voting))
	consensus.Confidence = meanConfidenceFor(voting, fallback)
	return consensus
}

func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// meanConfidenceFor averages the confidence of the reviews that voted for
// the given verdict.
func meanConfidenceFor(voting []*Review, verdict Verdict) float64 {
	var sum float64
	var n int
	for _, r := range voting {
		if r.Verdict == verdict {
			sum += r.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
