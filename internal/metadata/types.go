package metadata

import (
	"context"
)

const (
	// UnknownValuePlaceholder fills fields for which no data exists.
	UnknownValuePlaceholder = "-"

	ownerRepositorySeparatorConstant = "/"
	releaseDateLayoutConstant        = "2006-01-02"
)

// RepoIdentity identifies a hosted repository by owner and name.
type RepoIdentity struct {
	Owner string
	Name  string
}

// String renders the identity in the canonical owner/name form.
func (identity RepoIdentity) String() string {
	return identity.Owner + ownerRepositorySeparatorConstant + identity.Name
}

// RepoInfo is the normalized activity summary every backend produces.
type RepoInfo struct {
	Activity         string
	OpenIssues       int
	OpenPullRequests int
	Stars            int
	ReleaseTag       string
	ReleaseDate      string
}

// RepoResult pairs a fetched summary with its owner/name display string.
type RepoResult struct {
	Repository string
	Info       RepoInfo
}

// RepositoryInfoFetcher is the contract shared by all backend clients.
type RepositoryInfoFetcher interface {
	FetchRepositoryInfo(executionContext context.Context, identity RepoIdentity) (RepoInfo, error)
}
