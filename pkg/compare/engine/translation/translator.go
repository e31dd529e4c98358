// Package translation rewrites SQL Server query text into Snowflake syntax.
//
// Rewriting is plain text substitution. It does not parse SQL, so function names
// inside string literals or identifiers are rewritten too.
package translation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// RuleKind distinguishes literal replacements from regular expressions.
type RuleKind string

const (
	RuleLiteral RuleKind = "literal"
	RuleRegex   RuleKind = "regex"
)

// Rule is one rewrite applied by the Translator.
type Rule struct {
	Category    string
	Kind        RuleKind
	Pattern     string
	Replacement string
}

// defaultRules are applied in this order. The regex replacement uses Go's ${n} syntax.
var defaultRules = []Rule{
	{Category: "date_functions", Kind: RuleLiteral, Pattern: "GETDATE()", Replacement: "CURRENT_TIMESTAMP()"},
	{Category: "date_functions", Kind: RuleLiteral, Pattern: "GETUTCDATE()", Replacement: "CURRENT_TIMESTAMP()"},
	{Category: "string_functions", Kind: RuleLiteral, Pattern: "LEN(", Replacement: "LENGTH("},
	{Category: "null_functions", Kind: RuleLiteral, Pattern: "ISNULL(", Replacement: "IFNULL("},
	{Category: "top_clause", Kind: RuleRegex, Pattern: `(?i)\bTOP\s+(\d+)\b`, Replacement: "LIMIT ${1}"},
}

type compiledRule struct {
	Rule
	replace func(string) string
}

// Translator rewrites SQL Server queries. It is stateless after construction and safe
// for concurrent use.
type Translator struct {
	rules []compiledRule
}

// NewTranslator creates a Translator with the built-in rule table.
func NewTranslator() *Translator {
	t, err := NewTranslatorWithRules(defaultRules)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTranslatorWithRules creates a Translator applying rules in order.
func NewTranslatorWithRules(rules []Rule) (*Translator, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}
	return &Translator{rules: compiled}, nil
}

// Rules returns a copy of the rule table in application order.
func (t *Translator) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Rule
	}
	return out
}

// Translate applies every rule to query and returns the Snowflake rendition.
// A failure yields a TranslationError and no partial output.
func (t *Translator) Translate(query string) (translated string, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause := fmt.Errorf("%v", r)
			logger.Errorf("Translation failed: %v", cause)
			translated = ""
			err = exception.NewTranslationError(fmt.Sprintf("Failed to translate query: %v", cause), cause)
		}
	}()

	out := query
	for _, r := range t.rules {
		out = r.replace(out)
	}
	logger.Debugf("Query translated successfully")
	return out, nil
}

func compileRule(r Rule) (compiledRule, error) {
	if r.Kind != RuleRegex {
		return compiledRule{Rule: r, replace: func(s string) string {
			return strings.ReplaceAll(s, r.Pattern, r.Replacement)
		}}, nil
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return compiledRule{}, exception.NewTranslationError(fmt.Sprintf("invalid pattern for rule %s", r.Category), err)
	}
	return compiledRule{Rule: r, replace: func(s string) string {
		return re.ReplaceAllString(s, r.Replacement)
	}}, nil
}

// ValidateTranslation reports whether a translated query is valid for Snowflake.
// No check is performed yet; every query is accepted.
func (t *Translator) ValidateTranslation(query string) bool {
	logger.Debugf("Translation validation not yet implemented")
	return true
}
