package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/retest/internal/core/domain"
)

func TestSubstitute(t *testing.T) {
	vars := domain.Vars{
		RootDir:   "/repo/tests",
		Name:      "case-a",
		Extension: "sh",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "no tokens",
			template: "plain text",
			want:     "plain text",
		},
		{
			name:     "name token",
			template: "{{name}}.py",
			want:     "case-a.py",
		},
		{
			name:     "all tokens",
			template: "{{root-dir}}/{{name}}.{{extension}}",
			want:     "/repo/tests/case-a.sh",
		},
		{
			name:     "repeated token",
			template: "{{name}}-{{name}}",
			want:     "case-a-case-a",
		},
		{
			name:     "token mid-string",
			template: "out/{{extension}}/log",
			want:     "out/sh/log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Substitute(tt.template, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstitute_Errors(t *testing.T) {
	vars := domain.Vars{RootDir: "/r", Name: "n", Extension: "e"}

	t.Run("unknown variable", func(t *testing.T) {
		_, err := domain.Substitute("{{nope}}", vars)
		require.ErrorIs(t, err, domain.ErrUnknownVariable)
	})

	t.Run("unterminated token", func(t *testing.T) {
		_, err := domain.Substitute("{{name", vars)
		require.ErrorIs(t, err, domain.ErrUnresolvedToken)
	})

	t.Run("expansion reintroducing a token", func(t *testing.T) {
		evil := domain.Vars{RootDir: "/r", Name: "{{extension}}", Extension: "e"}
		_, err := domain.Substitute("{{name}}", evil)
		require.ErrorIs(t, err, domain.ErrUnresolvedToken)
	})
}

// Substitution is a pure function of the template and variables: repeated
// calls agree.
func TestSubstitute_Pure(t *testing.T) {
	vars := domain.Vars{RootDir: "/a/b", Name: "x", Extension: "txt"}
	template := "{{root-dir}}/{{name}}.{{extension}}"

	first, err := domain.Substitute(template, vars)
	require.NoError(t, err)
	second, err := domain.Substitute(template, vars)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSubstituteAll(t *testing.T) {
	vars := domain.Vars{RootDir: "/r", Name: "case", Extension: "sh"}

	got, err := domain.SubstituteAll([]string{"{{name}}.sh", "literal"}, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"case.sh", "literal"}, got)

	_, err = domain.SubstituteAll([]string{"ok", "{{bad}}"}, vars)
	require.ErrorIs(t, err, domain.ErrUnknownVariable)

	got, err = domain.SubstituteAll(nil, vars)
	require.NoError(t, err)
	assert.Nil(t, got)
}
