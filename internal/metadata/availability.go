package metadata

import (
	"os/exec"

	"github.com/dmarenov/ghglance/internal/execshell"
	"github.com/dmarenov/ghglance/internal/githubauth"
)

// BackendAvailability captures which backends can be attempted. It is
// computed once at startup and read-only afterwards.
type BackendAvailability struct {
	HelperAvailable bool
	TokenPresent    bool
}

// BinaryLocator resolves an executable name on the search path.
type BinaryLocator func(executableName string) (string, error)

// DetectBackendAvailability probes for the GitHub CLI on the search path and
// a bearer token in the environment. A nil locator uses exec.LookPath; a nil
// environment map consults the process environment.
func DetectBackendAvailability(locator BinaryLocator, environment map[string]string) BackendAvailability {
	if locator == nil {
		locator = exec.LookPath
	}

	_, helperLookupError := locator(string(execshell.CommandGitHub))
	_, tokenPresent := githubauth.ResolveToken(environment)

	return BackendAvailability{
		HelperAvailable: helperLookupError == nil,
		TokenPresent:    tokenPresent,
	}
}
