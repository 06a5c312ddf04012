package metadata

import (
	"errors"
	"fmt"
)

const (
	repositoryNotFoundMessageConstant         = "repository not found or access denied"
	transportErrorTemplateConstant            = "%s backend request failed: %s"
	missingCredentialErrorTemplateConstant    = "no GitHub CLI and no bearer token available to summarize %s"
	missingCredentialUnknownRepoLabelConstant = "repository"
)

// BackendName identifies which client produced an error.
type BackendName string

// Backend identifiers.
const (
	BackendGitHubCLI BackendName = "gh-cli"
	BackendGraphQL   BackendName = "graphql"
	BackendREST      BackendName = "rest"
)

// ErrRepositoryNotFound indicates the hosted repository does not exist or the
// credential cannot see it.
var ErrRepositoryNotFound = errors.New(repositoryNotFoundMessageConstant)

// TransportError wraps connection, HTTP, or helper-invocation failures.
type TransportError struct {
	Backend BackendName
	Cause   error
}

// Error describes the transport failure.
func (transportError TransportError) Error() string {
	return fmt.Sprintf(transportErrorTemplateConstant, transportError.Backend, transportError.Cause)
}

// Unwrap exposes the underlying cause.
func (transportError TransportError) Unwrap() error {
	return transportError.Cause
}

// MissingCredentialError indicates no backend could be attempted because
// neither the trusted helper nor a bearer token is available.
type MissingCredentialError struct {
	Identity RepoIdentity
}

// Error describes the missing credential.
func (credentialError MissingCredentialError) Error() string {
	repositoryLabel := credentialError.Identity.String()
	if len(credentialError.Identity.Owner) == 0 && len(credentialError.Identity.Name) == 0 {
		repositoryLabel = missingCredentialUnknownRepoLabelConstant
	}
	return fmt.Sprintf(missingCredentialErrorTemplateConstant, repositoryLabel)
}
