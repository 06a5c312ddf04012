package gitrepo

import (
	"strings"

	"github.com/dmarenov/ghglance/internal/metadata"
)

const (
	gitHubSSHPrefixConstant   = "git@github.com:"
	gitHubHostMarkerConstant  = "github.com/"
	pathSeparatorConstant     = "/"
	gitSuffixConstant         = ".git"
	trimmedPathCutsetConstant = "/"
)

// ParseGitHubRemote extracts the hosted repository identity from a git remote
// URL. The SSH form git@github.com:owner/repo and any URL containing a
// github.com/ path are recognized; remotes on other hosts, and remotes whose
// path does not carry both an owner and a name, report false.
func ParseGitHubRemote(remoteURL string) (metadata.RepoIdentity, bool) {
	trimmedRemote := strings.TrimSpace(remoteURL)
	if len(trimmedRemote) == 0 {
		return metadata.RepoIdentity{}, false
	}

	if strings.HasPrefix(trimmedRemote, gitHubSSHPrefixConstant) {
		return splitOwnerAndName(strings.TrimPrefix(trimmedRemote, gitHubSSHPrefixConstant))
	}

	_, hostedPath, hostFound := strings.Cut(trimmedRemote, gitHubHostMarkerConstant)
	if !hostFound {
		return metadata.RepoIdentity{}, false
	}
	return splitOwnerAndName(hostedPath)
}

func splitOwnerAndName(remotePath string) (metadata.RepoIdentity, bool) {
	cleanedPath := strings.Trim(remotePath, trimmedPathCutsetConstant)
	cleanedPath = strings.TrimSuffix(cleanedPath, gitSuffixConstant)

	owner, name, separatorFound := strings.Cut(cleanedPath, pathSeparatorConstant)
	if !separatorFound || len(owner) == 0 || len(name) == 0 {
		return metadata.RepoIdentity{}, false
	}
	return metadata.RepoIdentity{Owner: owner, Name: name}, true
}
