package translation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/sqlcompare/pkg/compare/engine/translation"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"getdate", "SELECT GETDATE()", "SELECT CURRENT_TIMESTAMP()"},
		{"getutcdate", "SELECT GETUTCDATE()", "SELECT CURRENT_TIMESTAMP()"},
		{"len", "SELECT LEN(name) FROM users", "SELECT LENGTH(name) FROM users"},
		{"isnull", "SELECT ISNULL(value, 0) FROM t", "SELECT IFNULL(value, 0) FROM t"},
		{"top", "SELECT TOP 10 * FROM users", "SELECT LIMIT 10 * FROM users"},
		{"top lower case", "select top  25 id from users", "select LIMIT 25 id from users"},
		{
			"multiple rules",
			"SELECT TOP 5 * FROM users WHERE LEN(name) > 5 AND GETDATE() > created_date",
			"SELECT LIMIT 5 * FROM users WHERE LENGTH(name) > 5 AND CURRENT_TIMESTAMP() > created_date",
		},
		{"untouched", "SELECT column1 FROM t WHERE condition = 'value'", "SELECT column1 FROM t WHERE condition = 'value'"},
		{"empty", "", ""},
		{"top without number", "SELECT TOP (10) * FROM users", "SELECT TOP (10) * FROM users"},
		{"lowercase functions are case sensitive", "SELECT len(name), getdate()", "SELECT len(name), getdate()"},
		{"string literal is rewritten", "SELECT 'GETDATE()'", "SELECT 'CURRENT_TIMESTAMP()'"},
	}
	tr := translation.NewTranslator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.Translate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_IsIdempotentForRewrittenText(t *testing.T) {
	tr := translation.NewTranslator()
	once, err := tr.Translate("SELECT TOP 3 ISNULL(a, 0), LEN(b) FROM t")
	require.NoError(t, err)
	twice, err := tr.Translate(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRules_Order(t *testing.T) {
	rules := translation.NewTranslator().Rules()
	require.Len(t, rules, 5)
	assert.Equal(t, "GETDATE()", rules[0].Pattern)
	assert.Equal(t, "GETUTCDATE()", rules[1].Pattern)
	assert.Equal(t, "LEN(", rules[2].Pattern)
	assert.Equal(t, "ISNULL(", rules[3].Pattern)
	assert.Equal(t, translation.RuleRegex, rules[4].Kind)

	rules[0].Pattern = "changed"
	assert.Equal(t, "GETDATE()", translation.NewTranslator().Rules()[0].Pattern)
}

func TestNewTranslatorWithRules_InvalidPattern(t *testing.T) {
	_, err := translation.NewTranslatorWithRules([]translation.Rule{
		{Category: "broken", Kind: translation.RuleRegex, Pattern: "(unclosed"},
	})
	assert.ErrorIs(t, err, exception.ErrTranslation)
}

func TestValidateTranslation_AcceptsEverything(t *testing.T) {
	tr := translation.NewTranslator()
	assert.True(t, tr.ValidateTranslation("SELECT * FROM t"))
	assert.True(t, tr.ValidateTranslation("not sql at all"))
}
