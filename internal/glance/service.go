package glance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dmarenov/ghglance/internal/gitrepo"
	"github.com/dmarenov/ghglance/internal/metadata"
	"github.com/dmarenov/ghglance/internal/shared"
)

const (
	noRepositoriesMessageTemplateConstant = "No git repositories found under %s\n"
	fetchFailureMessageTemplateConstant   = "  Error: %s\n"
	progressMessageTemplateConstant       = "summarizing %d repositories"
	rootsJoinSeparatorConstant            = ", "
	discoveryErrorTemplateConstant        = "repository discovery failed: %w"
	remoteSkippedMessageConstant          = "checkout skipped: origin remote unavailable"
	identitySkippedMessageConstant        = "checkout skipped: remote is not a GitHub repository"
	logFieldCheckoutConstant              = "checkout"
	logFieldRemoteConstant                = "remote"
	missingDependencyMessageConstant      = "glance service dependency not configured"
)

// ErrMissingDependency indicates the service was constructed without one of
// its required collaborators.
var ErrMissingDependency = errors.New(missingDependencyMessageConstant)

// RepositoryDiscoverer locates checkout directories beneath root paths.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
}

// RemoteReader resolves the origin remote URL of a checkout.
type RemoteReader interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string) (string, error)
}

// SummaryAggregator fetches normalized summaries for hosted repositories.
type SummaryAggregator interface {
	FetchAll(executionContext context.Context, identities []metadata.RepoIdentity, observeFailure metadata.FailureObserver) []metadata.RepoResult
}

// SummaryRenderer presents the aggregated summaries.
type SummaryRenderer interface {
	Render(results []metadata.RepoResult)
}

// ProgressIndicator signals long-running fetch activity to the user.
type ProgressIndicator interface {
	Start(message string)
	Stop()
}

// ServiceDependencies captures the collaborators of the glance pipeline.
// Progress, reporters, and the logger are optional.
type ServiceDependencies struct {
	Discoverer   RepositoryDiscoverer
	RemoteReader RemoteReader
	Aggregator   SummaryAggregator
	Renderer     SummaryRenderer
	Progress     ProgressIndicator
	Output       shared.Reporter
	Errors       shared.Reporter
	Logger       *zap.Logger
}

// Service drives the discover → resolve → fetch → render pipeline.
type Service struct {
	dependencies ServiceDependencies
}

// NewService validates the dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Discoverer == nil || dependencies.RemoteReader == nil || dependencies.Aggregator == nil || dependencies.Renderer == nil {
		return nil, ErrMissingDependency
	}
	if dependencies.Output == nil {
		dependencies.Output = shared.NewWriterReporter(nil)
	}
	if dependencies.Errors == nil {
		dependencies.Errors = dependencies.Output
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies}, nil
}

// Run executes the pipeline over the provided roots. Checkouts without a
// usable GitHub remote are skipped quietly; per-repository fetch failures are
// reported and never abort the run.
func (service *Service) Run(executionContext context.Context, roots []string) error {
	repositories, discoveryError := service.dependencies.Discoverer.DiscoverRepositories(roots)
	if discoveryError != nil {
		return fmt.Errorf(discoveryErrorTemplateConstant, discoveryError)
	}

	if len(repositories) == 0 {
		service.dependencies.Output.Printf(noRepositoriesMessageTemplateConstant, strings.Join(roots, rootsJoinSeparatorConstant))
		return nil
	}

	identities := service.resolveIdentities(executionContext, repositories)
	if len(identities) == 0 {
		return nil
	}

	if service.dependencies.Progress != nil {
		service.dependencies.Progress.Start(fmt.Sprintf(progressMessageTemplateConstant, len(identities)))
	}
	results := service.dependencies.Aggregator.FetchAll(executionContext, identities, func(failure metadata.FetchFailure) {
		service.dependencies.Errors.Printf(fetchFailureMessageTemplateConstant, failure.Cause)
	})
	if service.dependencies.Progress != nil {
		service.dependencies.Progress.Stop()
	}

	if len(results) == 0 {
		return nil
	}

	service.dependencies.Renderer.Render(results)
	return nil
}

func (service *Service) resolveIdentities(executionContext context.Context, repositories []string) []metadata.RepoIdentity {
	identities := make([]metadata.RepoIdentity, 0, len(repositories))
	for _, repositoryPath := range repositories {
		remoteURL, remoteError := service.dependencies.RemoteReader.GetRemoteURL(executionContext, repositoryPath)
		if remoteError != nil {
			service.dependencies.Logger.Debug(
				remoteSkippedMessageConstant,
				zap.String(logFieldCheckoutConstant, repositoryPath),
				zap.Error(remoteError),
			)
			continue
		}

		identity, parsed := gitrepo.ParseGitHubRemote(remoteURL)
		if !parsed {
			service.dependencies.Logger.Debug(
				identitySkippedMessageConstant,
				zap.String(logFieldCheckoutConstant, repositoryPath),
				zap.String(logFieldRemoteConstant, remoteURL),
			)
			continue
		}

		identities = append(identities, identity)
	}
	return identities
}
