// Package githubapi provides a minimal REST client for the GitHub API, limited
// to the repository existence check performed before pushing a migrated
// repository, plus push URL construction helpers.
package githubapi
