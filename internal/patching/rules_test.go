package patching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRulesDropFallbackClause(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		count int
	}{
		{
			name:  "spaced fallback",
			input: "async getMachineId(){return a ?? b}",
			want:  "async getMachineId(){return b}",
			count: 1,
		},
		{
			name:  "minified fallback",
			input: `x;async getMachineId(){return this.a.machineId??this.b.fallback()}y`,
			want:  `x;async getMachineId(){return this.b.fallback()}y`,
			count: 1,
		},
		{
			name:  "mac machine id",
			input: "async getMacMachineId(){return this.m??computeMac()}",
			want:  "async getMacMachineId(){return computeMac()}",
			count: 1,
		},
		{
			name:  "both getters",
			input: "async getMachineId(){return a??b};async getMacMachineId(){return c??d}",
			want:  "async getMachineId(){return b};async getMacMachineId(){return d}",
			count: 2,
		},
		{
			name:  "every occurrence",
			input: "async getMachineId(){return a??b}|async getMachineId(){return c??d}",
			want:  "async getMachineId(){return b}|async getMachineId(){return d}",
			count: 2,
		},
		{
			name:  "no match",
			input: "function foo(){return 1}",
			want:  "function foo(){return 1}",
			count: 0,
		},
		{
			name:  "already patched",
			input: "async getMachineId(){return b}",
			want:  "async getMachineId(){return b}",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransformer(nil)
			got, n := tr.transform(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestChainedFallbackShrinksOneOperandPerRun(t *testing.T) {
	tr := NewTransformer(nil)

	once, n1 := tr.transform("async getMachineId(){return a??b??c}")
	assert.Equal(t, "async getMachineId(){return b??c}", once)
	assert.Equal(t, 1, n1)

	twice, n2 := tr.transform(once)
	assert.Equal(t, "async getMachineId(){return c}", twice)
	assert.Equal(t, 1, n2)

	thrice, n3 := tr.transform(twice)
	assert.Equal(t, twice, thrice)
	assert.Equal(t, 0, n3)
}

func TestRuleApplyReportsZeroWithoutCopy(t *testing.T) {
	rule := DefaultRules()[0]
	text := "nothing to see"
	got, n := rule.Apply(text)
	if n != 0 || got != text {
		t.Fatalf("Apply(%q) = %q, %d; want unchanged, 0", text, got, n)
	}
}

func TestRulesIdempotent_PropertyBased(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ident := rapid.StringMatching(`[A-Za-z_$][A-Za-z0-9_.$()]{0,15}`)
		filler := rapid.StringMatching(`[a-z;= ]{0,12}`)

		fn := rapid.SampledFrom([]string{"getMachineId", "getMacMachineId"}).Draw(t, "fn")
		expr := ident.Draw(t, "expr")
		fallback := ident.Draw(t, "fallback")
		sep := rapid.SampledFrom([]string{"??", " ?? ", "?? "}).Draw(t, "sep")

		text := filler.Draw(t, "prefix") +
			"async " + fn + "(){return " + expr + sep + fallback + "}" +
			filler.Draw(t, "suffix")

		tr := NewTransformer(nil)
		once, n1 := tr.transform(text)
		require.Equal(t, 1, n1, "expected one match in %q", text)
		require.NotContains(t, once, "??")
		require.True(t, strings.Contains(once, "async "+fn+"(){return "+fallback+"}"), "got %q", once)

		twice, n2 := tr.transform(once)
		assert.Equal(t, 0, n2)
		assert.Equal(t, once, twice)
	})
}
