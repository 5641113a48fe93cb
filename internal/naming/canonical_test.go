package naming_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardian/internal/naming"
)

func TestCanonicalize(testInstance *testing.T) {
	rules := naming.MustDefaultRules()

	testCases := []struct {
		name             string
		typeTag          string
		shortName        string
		expectedName     string
		alreadyCanonical bool
		prefixMatched    bool
	}{
		{name: "lowercase_mesh", typeTag: "StaticMesh", shortName: "crate_01", expectedName: "SM_Crate_01", prefixMatched: true},
		{name: "already_prefixed", typeTag: "StaticMesh", shortName: "SM_Crate_01", expectedName: "SM_Crate_01", alreadyCanonical: true, prefixMatched: true},
		{name: "spaces_and_symbols", typeTag: "Texture", shortName: "rock  albedo-large", expectedName: "T_Rock_Albedo_Large", prefixMatched: true},
		{name: "collapses_separators", typeTag: "Blueprint", shortName: "__door__open__", expectedName: "BP_Door_Open", prefixMatched: true},
		{name: "lowers_word_tails", typeTag: "MaterialInstance", shortName: "BRICK_wall", expectedName: "MI_Brick_Wall", prefixMatched: true},
		{name: "default_prefix", typeTag: "World", shortName: "level one", expectedName: "A_Level_One"},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			result, canonicalError := rules.Canonicalize(testCase.typeTag, testCase.shortName)
			require.NoError(subTest, canonicalError)
			require.Equal(subTest, testCase.expectedName, result.Name)
			require.Equal(subTest, testCase.alreadyCanonical, result.AlreadyCanonical)
			require.Equal(subTest, testCase.prefixMatched, result.PrefixMatched)
		})
	}
}

func TestCanonicalizeIsIdempotent(testInstance *testing.T) {
	rules := naming.MustDefaultRules()

	first, firstError := rules.Canonicalize("StaticMesh", "old crate")
	require.NoError(testInstance, firstError)
	require.False(testInstance, first.AlreadyCanonical)

	second, secondError := rules.Canonicalize("StaticMesh", first.Name)
	require.NoError(testInstance, secondError)
	require.True(testInstance, second.AlreadyCanonical)
	require.Equal(testInstance, first.Name, second.Name)
}

func TestCanonicalizeRejectsNamesWithoutUsableCharacters(testInstance *testing.T) {
	rules := naming.MustDefaultRules()

	for _, shortName := range []string{"", "___", "日本"} {
		_, canonicalError := rules.Canonicalize("StaticMesh", shortName)
		require.ErrorIs(testInstance, canonicalError, naming.ErrEmptyCanonicalName, shortName)
	}
}
