package migration_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/tfsmigrate/internal/migration"
)

func TestParseBranchSelector(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name                string
		rawValue            any
		expectError         bool
		expectAllBranches   bool
		expectedBranchNames []string
	}{
		{name: "nil_selects_all_branches", rawValue: nil, expectAllBranches: true},
		{name: "all_sentinel_selects_all_branches", rawValue: "all", expectAllBranches: true},
		{name: "all_sentinel_case_insensitive", rawValue: "  ALL  ", expectAllBranches: true},
		{name: "other_string_rejected", rawValue: "main", expectError: true},
		{name: "string_list_preserved_in_order", rawValue: []string{"main", "feature-x"}, expectedBranchNames: []string{"main", "feature-x"}},
		{name: "any_list_converted", rawValue: []any{"main", "release"}, expectedBranchNames: []string{"main", "release"}},
		{name: "list_elements_trimmed", rawValue: []string{"  main  ", "", "feature-x"}, expectedBranchNames: []string{"main", "feature-x"}},
		{name: "empty_list_rejected", rawValue: []string{"", "   "}, expectError: true},
		{name: "non_string_element_rejected", rawValue: []any{"main", 7}, expectError: true},
		{name: "unsupported_type_rejected", rawValue: 42, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			subtestInstance.Parallel()

			selector, parseError := migration.ParseBranchSelector(testCase.rawValue)

			if testCase.expectError {
				var selectorParseError migration.BranchSelectorParseError
				require.ErrorAs(subtestInstance, parseError, &selectorParseError)
				return
			}

			require.NoError(subtestInstance, parseError)
			require.Equal(subtestInstance, testCase.expectAllBranches, selector.IncludesAllBranches())
			require.Equal(subtestInstance, testCase.expectedBranchNames, selector.BranchNames())
		})
	}
}

func TestBranchNamesReturnsCopy(testInstance *testing.T) {
	testInstance.Parallel()

	selector, parseError := migration.ParseBranchSelector([]string{"main"})
	require.NoError(testInstance, parseError)

	firstCopy := selector.BranchNames()
	firstCopy[0] = "mutated"

	require.Equal(testInstance, []string{"main"}, selector.BranchNames())
}
