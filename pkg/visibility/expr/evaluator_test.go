package expr

import (
	"testing"

	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/visibility"
)

func TestEvaluatorRules(t *testing.T) {
	t.Parallel()

	values := model.Values{
		"resource_type": "video_link",
		"roles":         []string{"Instructor"},
		"accept_terms":  true,
		"order":         "3",
		"title":         "",
		"profile":       map[string]any{"timezone": "UTC"},
	}
	extras := map[string]any{"role": "instructor"}

	cases := []struct {
		rule string
		want bool
	}{
		{``, true},
		{`accept_terms`, true},
		{`!accept_terms`, false},
		{`title`, false},
		{`missing`, false},
		{`resource_type == "video_link"`, true},
		{`resource_type == link`, false},
		{`resource_type != 'link'`, true},
		{`resource_type in ["video_link", "link"]`, true},
		{`!(resource_type in ["video_link", "link"])`, false},
		{`roles == "Instructor"`, true},
		{`roles in ["Student"]`, false},
		{`order == 3`, true},
		{`order != 3`, false},
		{`accept_terms == true && order == 3`, true},
		{`title || accept_terms`, true},
		{`title or not accept_terms`, false},
		{`missing == null`, true},
		{`profile.timezone == "UTC"`, true},
		{`extras.role == "instructor"`, true},
	}

	eval := New()
	for _, tc := range cases {
		got, err := eval.Eval("field", tc.rule, visibility.Context{Values: values, Extras: extras})
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvaluatorRejectsMalformedRules(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		`resource_type =`,
		`== "x"`,
		`(a && b`,
		`a in "x"`,
		`a in ["x" "y"]`,
		`name == "unterminated`,
		`a @ b`,
	} {
		if _, err := eval.Compile(rule); err == nil {
			t.Fatalf("expected error for %q", rule)
		}
	}
}

func TestEvaluatorCachesCompiledRules(t *testing.T) {
	t.Parallel()

	eval := New()
	if _, err := eval.Compile(`a == 1`); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := eval.Compile(` a == 1 `); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := len(eval.cache); got != 1 {
		t.Fatalf("expected one cached rule, got %d", got)
	}
}
