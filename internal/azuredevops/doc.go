// Package azuredevops provides a minimal REST client for Azure DevOps (TFS)
// collections, sufficient to enumerate the Git repositories of a project and to
// derive their clone URLs.
package azuredevops
