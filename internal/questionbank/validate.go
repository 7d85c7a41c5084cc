package questionbank

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

// MinVersion is the oldest bank format this build understands. Banks
// must share its major version.
const MinVersion = "v1.0.0"

// Issue captures a validation problem in a bank file.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports every issue found in a bank file.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("question bank validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, format string, args ...any) {
	c.issues = append(c.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

func checkVersion(c *issueCollector, v string) {
	switch {
	case v == "":
		c.add("version", "is required")
	case !semver.IsValid(v):
		c.add("version", "%q is not a semantic version", v)
	case semver.Major(v) != semver.Major(MinVersion):
		c.add("version", "major version %s is not supported (want %s)", semver.Major(v), semver.Major(MinVersion))
	case semver.Compare(v, MinVersion) < 0:
		c.add("version", "%s is older than the minimum %s", v, MinVersion)
	}
}

// build validates f and converts it to a Bank. Every tier must be
// present, ids and question signatures must be unique across the whole
// bank, and each entry must satisfy the question invariants.
func build(f File) (*Bank, error) {
	c := &issueCollector{}
	checkVersion(c, f.Version)

	b := &Bank{version: f.Version, byTier: make(map[questiongen.Tier][]entry)}
	ids := map[string]string{}
	sigs := map[string]string{}

	tierNames := make([]string, 0, len(f.Tiers))
	for name := range f.Tiers {
		tierNames = append(tierNames, name)
	}
	sort.Strings(tierNames)

	for _, name := range tierNames {
		tier, err := questiongen.ParseTier(name)
		if err != nil {
			c.add("tiers."+name, "unknown tier")
			continue
		}
		for i, e := range f.Tiers[name] {
			field := fmt.Sprintf("tiers.%s[%d]", name, i)
			q, ok := toQuestion(c, field, e, tier)
			if !ok {
				continue
			}
			if prev, dup := ids[q.ID]; dup {
				c.add(field+".id", "duplicate id %q (also at %s)", q.ID, prev)
				continue
			}
			ids[q.ID] = field
			if prev, dup := sigs[q.Signature()]; dup {
				c.add(field+".question", "duplicate question text (also at %s)", prev)
				continue
			}
			sigs[q.Signature()] = field
			b.byTier[tier] = append(b.byTier[tier], entry{key: q.ID, q: q})
		}
	}

	for _, tier := range questiongen.Tiers() {
		if len(f.Tiers[string(tier)]) == 0 {
			c.add("tiers."+string(tier), "must include at least one entry")
		}
	}

	if err := c.result(); err != nil {
		return nil, err
	}
	return b, nil
}

func toQuestion(c *issueCollector, field string, e Entry, tier questiongen.Tier) (questiongen.Question, bool) {
	before := len(c.issues)

	id := strings.TrimSpace(e.ID)
	if id == "" {
		c.add(field+".id", "is required")
	}

	opts := make(map[questiongen.Label]string, len(e.Options))
	for k, v := range e.Options {
		l, err := questiongen.ParseLabel(k)
		if err != nil {
			c.add(field+".options."+k, "unknown label")
			continue
		}
		opts[l] = strings.TrimSpace(v)
	}

	answer, err := questiongen.ParseLabel(e.Answer)
	if err != nil {
		c.add(field+".answer", "%v", err)
	}

	q := questiongen.Question{
		ID:      id,
		Text:    strings.TrimSpace(e.Question),
		Options: opts,
		Correct: answer,
		Tier:    tier,
		Source:  questiongen.SourceBank,
	}
	if len(c.issues) == before {
		if err := q.Validate(); err != nil {
			c.add(field, "%v", err)
		}
	}
	return q, len(c.issues) == before
}
