package naming

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Violation describes why a short name breaks the naming convention.
type Violation string

// Violation reasons in evaluation order. ViolationEmpty is reported for a name with no characters.
const (
	ViolationEmpty       Violation = "Empty name"
	ViolationWhitespace  Violation = "Contains spaces"
	ViolationPlaceholder Violation = "Temp/placeholder name"
	ViolationLowercase   Violation = "Starts lowercase"
)

const (
	emptyTypeTagTemplateConstant  = "prefix rule %d: type must not be empty"
	emptyPrefixTemplateConstant   = "prefix rule %d (%s): prefix must not be empty"
	duplicateTypeTemplateConstant = "prefix rule %d: duplicate type %s"
	emptyDefaultPrefixMessage     = "default prefix must not be empty"
)

// ErrEmptyDefaultPrefix indicates a configuration without a fallback prefix.
var ErrEmptyDefaultPrefix = errors.New(emptyDefaultPrefixMessage)

// Rules is an immutable naming convention safe for concurrent use.
type Rules struct {
	prefixes          []PrefixRule
	placeholderTokens []string
	defaultPrefix     string
}

// NewRules validates configuration and builds Rules from it.
func NewRules(configuration Configuration) (Rules, error) {
	defaultPrefix := strings.TrimSpace(configuration.DefaultPrefix)
	if len(defaultPrefix) == 0 {
		return Rules{}, ErrEmptyDefaultPrefix
	}

	seenTypes := make(map[string]struct{}, len(configuration.Prefixes))
	prefixes := make([]PrefixRule, 0, len(configuration.Prefixes))
	for ruleIndex, rule := range configuration.Prefixes {
		typeTag := strings.TrimSpace(rule.TypeTag)
		prefix := strings.TrimSpace(rule.Prefix)
		if len(typeTag) == 0 {
			return Rules{}, fmt.Errorf(emptyTypeTagTemplateConstant, ruleIndex)
		}
		if len(prefix) == 0 {
			return Rules{}, fmt.Errorf(emptyPrefixTemplateConstant, ruleIndex, typeTag)
		}
		if _, duplicate := seenTypes[typeTag]; duplicate {
			return Rules{}, fmt.Errorf(duplicateTypeTemplateConstant, ruleIndex, typeTag)
		}
		seenTypes[typeTag] = struct{}{}
		prefixes = append(prefixes, PrefixRule{TypeTag: typeTag, Prefix: prefix})
	}

	placeholderTokens := make([]string, 0, len(configuration.PlaceholderTokens))
	for _, token := range configuration.PlaceholderTokens {
		trimmedToken := strings.TrimSpace(token)
		if len(trimmedToken) > 0 {
			placeholderTokens = append(placeholderTokens, trimmedToken)
		}
	}

	return Rules{prefixes: prefixes, placeholderTokens: placeholderTokens, defaultPrefix: defaultPrefix}, nil
}

// MustDefaultRules returns Rules built from DefaultConfiguration.
func MustDefaultRules() Rules {
	rules, rulesError := NewRules(DefaultConfiguration())
	if rulesError != nil {
		panic(rulesError)
	}
	return rules
}

// DefaultPrefix returns the fallback prefix. It is empty for a zero Rules value.
func (rules Rules) DefaultPrefix() string {
	return rules.defaultPrefix
}

// PrefixFor returns the prefix for typeTag. A rule matches when its type appears
// inside typeTag; the longest matching type wins and earlier rules break ties.
// matched is false when the default prefix was used.
func (rules Rules) PrefixFor(typeTag string) (prefix string, matched bool) {
	bestLength := 0
	for _, rule := range rules.prefixes {
		if len(rule.TypeTag) > bestLength && strings.Contains(typeTag, rule.TypeTag) {
			prefix = rule.Prefix
			bestLength = len(rule.TypeTag)
		}
	}
	if bestLength == 0 {
		return rules.defaultPrefix, false
	}
	return prefix, true
}

// Validate returns the first convention violation of shortName, if any.
func (rules Rules) Validate(shortName string) (Violation, bool) {
	normalizedName := norm.NFC.String(shortName)
	if len(normalizedName) == 0 {
		return ViolationEmpty, true
	}

	if strings.IndexFunc(normalizedName, unicode.IsSpace) >= 0 {
		return ViolationWhitespace, true
	}

	for _, token := range rules.placeholderTokens {
		if strings.HasPrefix(normalizedName, token) {
			return ViolationPlaceholder, true
		}
	}

	firstRune, _ := utf8.DecodeRuneInString(normalizedName)
	if unicode.IsLower(firstRune) {
		return ViolationLowercase, true
	}

	return "", false
}
