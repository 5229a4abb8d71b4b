package affinity

import "testing"

func TestParse_AllKinds(t *testing.T) {
	for _, k := range Kinds {
		c, err := Parse(string(k))
		if err != nil {
			t.Fatalf("Parse(%q): %v", k, err)
		}
		if c.Kind != k || c.Negated {
			t.Fatalf("Parse(%q) = %+v", k, c)
		}
	}
}

func TestParse_Negation(t *testing.T) {
	tests := []struct {
		token string
		want  Criterion
	}{
		{"not-largest", Criterion{Kind: Largest, Negated: true}},
		{"!primary", Criterion{Kind: Primary, Negated: true}},
		{"nonprimary", Criterion{Kind: Primary, Negated: true}},
		{"NOT-Leftmost", Criterion{Kind: Leftmost, Negated: true}},
		{"  portrait ", Criterion{Kind: Portrait}},
	}
	for _, tt := range tests {
		c, err := Parse(tt.token)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.token, err)
		}
		if c != tt.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tt.token, c, tt.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, token := range []string{"", "biggest", "not-", "!", "largest smallest"} {
		if _, err := Parse(token); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", token)
		}
	}
}

func TestParseAll_FailsFast(t *testing.T) {
	if _, err := ParseAll([]string{"primary", "widest"}); err == nil {
		t.Fatal("expected error for unknown affinity")
	}
	criteria, err := ParseAll([]string{"largest", "not-leftmost"})
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(criteria) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(criteria))
	}
}

func TestCriterion_String(t *testing.T) {
	if got := (Criterion{Kind: Largest}).String(); got != "largest" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Criterion{Kind: Primary, Negated: true}).String(); got != "not-primary" {
		t.Fatalf("String() = %q", got)
	}
}
