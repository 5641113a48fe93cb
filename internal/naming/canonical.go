package naming

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	wordSeparatorConstant         = "_"
	emptyCanonicalMessageConstant = "name has no characters usable in a canonical name"
)

// ErrEmptyCanonicalName indicates that a name reduced to nothing after cleaning.
var ErrEmptyCanonicalName = errors.New(emptyCanonicalMessageConstant)

var disallowedCharacterPattern = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Canonicalization is the outcome of canonicalizing one short name.
type Canonicalization struct {
	Name             string
	Prefix           string
	PrefixMatched    bool
	AlreadyCanonical bool
}

// Canonicalize derives the canonical short name for a record of typeTag. A name
// that already starts with the expected prefix is left as is.
func (rules Rules) Canonicalize(typeTag string, shortName string) (Canonicalization, error) {
	prefix, matched := rules.PrefixFor(typeTag)
	normalizedName := norm.NFC.String(shortName)

	result := Canonicalization{Name: normalizedName, Prefix: prefix, PrefixMatched: matched}
	if strings.HasPrefix(normalizedName, prefix) {
		result.AlreadyCanonical = true
		return result, nil
	}

	cleanedName := disallowedCharacterPattern.ReplaceAllString(normalizedName, wordSeparatorConstant)
	titleCaser := cases.Title(language.Und)

	var words []string
	for _, word := range strings.Split(cleanedName, wordSeparatorConstant) {
		if len(word) == 0 {
			continue
		}
		words = append(words, titleCaser.String(word))
	}
	if len(words) == 0 {
		return result, ErrEmptyCanonicalName
	}

	result.Name = prefix + strings.Join(words, wordSeparatorConstant)
	return result, nil
}
