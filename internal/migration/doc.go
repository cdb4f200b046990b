// Package migration implements the repository migration workflow that copies a
// Git repository out of an Azure DevOps (TFS) collection and pushes it to a
// pre-existing GitHub repository, recording completed migrations in the
// checkpoint ledger so repeated runs skip finished work.
package migration
