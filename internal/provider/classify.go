package provider

import (
	"context"
	"errors"
	"net"
	"regexp"

	"github.com/revmux/revmux/internal/review"
)

// Rule maps an error-message pattern to the verdict a failure should
// surface as. Adapter-specific rules are checked before the defaults.
type Rule struct {
	Pattern *regexp.Regexp
	Verdict review.Verdict
}

// defaultRules covers the failure signatures shared by every backend.
// Vendor API errors embed their HTTP status in the message, so status
// codes are matched textually.
var defaultRules = []Rule{
	{regexp.MustCompile(`(?i)status 401|status 403|unauthorized|permission[ _]denied|invalid[ -]?(api[ -]?key|x-api-key)|authentication`), review.VerdictErrorAuth},
	{regexp.MustCompile(`(?i)deadline exceeded|timed? ?out|timeout`), review.VerdictErrorTimeout},
	{regexp.MustCompile(`(?i)connection refused|connection reset|no such host|broken pipe|network is unreachable|unexpected EOF`), review.VerdictErrorNetwork},
}

// Classifier turns adapter call failures into error verdicts so the
// consensus layer can keep counting them without inspecting causes.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier. Extra rules take precedence over
// the built-in ones, letting an adapter override matching for its
// vendor's error vocabulary.
func NewClassifier(extra ...Rule) *Classifier {
	rules := make([]Rule, 0, len(extra)+len(defaultRules))
	rules = append(rules, extra...)
	rules = append(rules, defaultRules...)

	return &Classifier{rules: rules}
}

// Classify maps err to one of the error verdicts. Unrecognized failures
// fall through to VerdictErrorService.
func (c *Classifier) Classify(err error) review.Verdict {
	if err == nil {
		return review.VerdictErrorService
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return review.VerdictErrorTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return review.VerdictErrorTimeout
		}
		return review.VerdictErrorNetwork
	}

	msg := err.Error()
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(msg) {
			return rule.Verdict
		}
	}

	return review.VerdictErrorService
}
