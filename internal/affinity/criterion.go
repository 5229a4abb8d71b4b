// Package affinity selects monitors from a topology snapshot by property
// rather than by output name: each criterion narrows the candidate set in
// order, so "largest, leftmost" means "leftmost among the largest".
package affinity

import (
	"fmt"
	"strings"
)

// Kind identifies a base affinity predicate.
type Kind string

const (
	Primary    Kind = "primary"
	Largest    Kind = "largest"
	Smallest   Kind = "smallest"
	Leftmost   Kind = "leftmost"
	Rightmost  Kind = "rightmost"
	Topmost    Kind = "topmost"
	Bottommost Kind = "bottommost"
	Portrait   Kind = "portrait"
	Landscape  Kind = "landscape"
)

// Kinds lists every valid criterion kind, in documentation order.
var Kinds = []Kind{
	Primary, Largest, Smallest,
	Leftmost, Rightmost, Topmost, Bottommost,
	Portrait, Landscape,
}

// Criterion is one affinity rule: a base predicate, optionally negated.
type Criterion struct {
	Kind    Kind
	Negated bool
}

func (c Criterion) String() string {
	if c.Negated {
		return "not-" + string(c.Kind)
	}
	return string(c.Kind)
}

// Parse converts an affinity token to a Criterion. Tokens are the kind name,
// optionally negated with a "not-" or "!" prefix ("not-largest", "!primary").
// "nonprimary" is accepted as an alias for "not-primary".
func Parse(token string) (Criterion, error) {
	raw := strings.ToLower(strings.TrimSpace(token))
	if raw == "" {
		return Criterion{}, fmt.Errorf("empty affinity")
	}

	var c Criterion
	name := raw
	switch {
	case strings.HasPrefix(raw, "!"):
		c.Negated = true
		name = raw[1:]
	case strings.HasPrefix(raw, "not-"):
		c.Negated = true
		name = raw[len("not-"):]
	case raw == "nonprimary":
		c.Negated = true
		name = string(Primary)
	}

	for _, k := range Kinds {
		if name == string(k) {
			c.Kind = k
			return c, nil
		}
	}
	return Criterion{}, fmt.Errorf("unknown affinity %q (valid: %s)", token, kindList())
}

// ParseAll converts a list of affinity tokens, preserving order.
func ParseAll(tokens []string) ([]Criterion, error) {
	criteria := make([]Criterion, 0, len(tokens))
	for _, token := range tokens {
		c, err := Parse(token)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
