package sanitize

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var validName = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already valid", "policybot_docs", "policybot_docs"},
		{"uppercase and spaces", "HR Policies 2024", "hr_policies_2024"},
		{"dashes", "policybot-docs", "policybot_docs"},
		{"runs collapse", "a--__--b", "a_b"},
		{"trims edges", "__docs__", "docs"},
		{"empty", "", DefaultIdentifier},
		{"only symbols", "!!!", DefaultIdentifier},
		{"non ascii", "Políticas RH", "pol_ticas_rh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identifier(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, validName, got)
		})
	}
}

func TestIdentifier_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("handbook", 20)
	got := Identifier(long)

	assert.Len(t, got, MaxIdentifierLength)
	assert.Regexp(t, validName, got)
	assert.True(t, strings.HasPrefix(got, "handbook"))

	other := Identifier(long + "x")
	assert.NotEqual(t, got, other, "distinct long names keep distinct suffixes")
	assert.Equal(t, got, Identifier(long), "deterministic")
}
