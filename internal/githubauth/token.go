// Package githubauth resolves GitHub bearer credentials from the environment.
package githubauth

import (
	"os"
	"strings"
)

// Environment variable names consulted for a GitHub bearer token.
const (
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubCLIToken = "GH_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubToken,
	EnvGitHubCLIToken,
}

// ResolveToken returns the first non-empty GitHub authentication token observed
// in the provided environment map or the process environment.
func ResolveToken(environment map[string]string) (string, bool) {
	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	if environment != nil {
		return "", false
	}
	for _, key := range tokenPreference {
		value := strings.TrimSpace(os.Getenv(key))
		if len(value) > 0 {
			return value, true
		}
	}
	return "", false
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
