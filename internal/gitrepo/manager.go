package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/dmarenov/ghglance/internal/execshell"
)

const (
	gitConfigSubcommandConstant          = "config"
	gitConfigGetFlagConstant             = "--get"
	gitOriginRemoteURLConfigConstant     = "remote.origin.url"
	executorNotConfiguredMessageConstant = "git executor not configured"
)

// GitExecutor abstracts git command execution for the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrGitExecutorNotConfigured indicates the manager was constructed without a
// git executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// RepositoryManager reads repository state through the shell executor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager using the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GetRemoteURL returns the origin remote URL configured for the repository at
// the provided path.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, gitConfigGetFlagConstant, gitOriginRemoteURLConfigConstant},
		WorkingDirectory: repositoryPath,
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}
