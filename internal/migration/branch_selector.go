package migration

import (
	"fmt"
	"strings"
)

const (
	allBranchesSentinelConstant                 = "all"
	branchSelectorInvalidTypeMessageTemplate    = "specific_branches must be %q or a list of branch names, got %T"
	branchSelectorInvalidStringMessageTemplate  = "specific_branches string value must be %q, got %q"
	branchSelectorEmptyListMessageConstant      = "specific_branches list contains no branch names"
	branchSelectorInvalidElementMessageTemplate = "specific_branches list element must be a string, got %T"
)

// BranchSelector describes which branches a migration transfers: either every
// ref via mirror operations, or an explicit ordered list of branch names.
type BranchSelector struct {
	branchNames []string
}

// BranchSelectorParseError reports an unusable specific_branches value.
type BranchSelectorParseError struct {
	Message string
}

// Error describes the parse failure.
func (parseError BranchSelectorParseError) Error() string {
	return parseError.Message
}

// AllBranchesSelector returns a selector covering every branch and tag.
func AllBranchesSelector() BranchSelector {
	return BranchSelector{}
}

// ParseBranchSelector normalizes the configured specific_branches value.
//
// Accepted forms: absent (nil), the sentinel string "all", or a non-empty list
// of branch name strings. Anything else is a configuration error.
func ParseBranchSelector(rawValue any) (BranchSelector, error) {
	switch typedValue := rawValue.(type) {
	case nil:
		return AllBranchesSelector(), nil
	case string:
		trimmedValue := strings.TrimSpace(typedValue)
		if strings.EqualFold(trimmedValue, allBranchesSentinelConstant) {
			return AllBranchesSelector(), nil
		}
		return BranchSelector{}, BranchSelectorParseError{
			Message: fmt.Sprintf(branchSelectorInvalidStringMessageTemplate, allBranchesSentinelConstant, typedValue),
		}
	case []string:
		return newBranchListSelector(typedValue)
	case []any:
		branchNames := make([]string, 0, len(typedValue))
		for _, listElement := range typedValue {
			elementText, elementIsString := listElement.(string)
			if !elementIsString {
				return BranchSelector{}, BranchSelectorParseError{
					Message: fmt.Sprintf(branchSelectorInvalidElementMessageTemplate, listElement),
				}
			}
			branchNames = append(branchNames, elementText)
		}
		return newBranchListSelector(branchNames)
	default:
		return BranchSelector{}, BranchSelectorParseError{
			Message: fmt.Sprintf(branchSelectorInvalidTypeMessageTemplate, allBranchesSentinelConstant, rawValue),
		}
	}
}

func newBranchListSelector(branchNames []string) (BranchSelector, error) {
	cleanedBranchNames := make([]string, 0, len(branchNames))
	for _, branchName := range branchNames {
		trimmedBranchName := strings.TrimSpace(branchName)
		if len(trimmedBranchName) == 0 {
			continue
		}
		cleanedBranchNames = append(cleanedBranchNames, trimmedBranchName)
	}
	if len(cleanedBranchNames) == 0 {
		return BranchSelector{}, BranchSelectorParseError{Message: branchSelectorEmptyListMessageConstant}
	}
	return BranchSelector{branchNames: cleanedBranchNames}, nil
}

// IncludesAllBranches reports whether the selector covers every ref.
func (selector BranchSelector) IncludesAllBranches() bool {
	return len(selector.branchNames) == 0
}

// BranchNames returns the ordered branch names of an explicit selector.
func (selector BranchSelector) BranchNames() []string {
	return append([]string(nil), selector.branchNames...)
}
