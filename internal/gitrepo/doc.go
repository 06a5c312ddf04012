// Package gitrepo contains helpers for interrogating local Git checkouts.
//
// It exposes RepositoryManager for reading origin remotes through the shell
// executor, along with remote URL parsing that maps SSH and HTTPS GitHub
// remotes onto hosted repository identities.
package gitrepo
