package glance_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarenov/ghglance/internal/glance"
	"github.com/dmarenov/ghglance/internal/metadata"
	"github.com/dmarenov/ghglance/internal/shared"
)

type stubDiscoverer struct {
	repositories   []string
	discoveryError error
	recordedRoots  []string
}

func (discoverer *stubDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	discoverer.recordedRoots = roots
	return discoverer.repositories, discoverer.discoveryError
}

type stubRemoteReader struct {
	remoteByPath map[string]string
	errorByPath  map[string]error
}

func (reader *stubRemoteReader) GetRemoteURL(_ context.Context, repositoryPath string) (string, error) {
	if readError, found := reader.errorByPath[repositoryPath]; found {
		return "", readError
	}
	return reader.remoteByPath[repositoryPath], nil
}

type stubAggregator struct {
	results            []metadata.RepoResult
	failures           []metadata.FetchFailure
	recordedIdentities []metadata.RepoIdentity
}

func (aggregator *stubAggregator) FetchAll(_ context.Context, identities []metadata.RepoIdentity, observeFailure metadata.FailureObserver) []metadata.RepoResult {
	aggregator.recordedIdentities = identities
	for _, failure := range aggregator.failures {
		if observeFailure != nil {
			observeFailure(failure)
		}
	}
	return aggregator.results
}

type recordingRenderer struct {
	renderedResults [][]metadata.RepoResult
}

func (renderer *recordingRenderer) Render(results []metadata.RepoResult) {
	renderer.renderedResults = append(renderer.renderedResults, results)
}

func TestNewServiceRequiresCollaborators(testInstance *testing.T) {
	service, creationError := glance.NewService(glance.ServiceDependencies{})

	require.Nil(testInstance, service)
	require.ErrorIs(testInstance, creationError, glance.ErrMissingDependency)
}

func TestServiceRunRendersAggregatedSummaries(testInstance *testing.T) {
	expectedResults := []metadata.RepoResult{
		{Repository: "owner/alpha", Info: metadata.RepoInfo{Stars: 1}},
		{Repository: "owner/beta", Info: metadata.RepoInfo{Stars: 2}},
	}
	discoverer := &stubDiscoverer{repositories: []string{"/dev/alpha", "/dev/beta"}}
	remoteReader := &stubRemoteReader{remoteByPath: map[string]string{
		"/dev/alpha": "git@github.com:owner/alpha.git",
		"/dev/beta":  "https://github.com/owner/beta.git",
	}}
	aggregator := &stubAggregator{results: expectedResults}
	renderer := &recordingRenderer{}

	service, creationError := glance.NewService(glance.ServiceDependencies{
		Discoverer:   discoverer,
		RemoteReader: remoteReader,
		Aggregator:   aggregator,
		Renderer:     renderer,
	})
	require.NoError(testInstance, creationError)

	runError := service.Run(context.Background(), []string{"/dev"})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{"/dev"}, discoverer.recordedRoots)
	require.Equal(testInstance, []metadata.RepoIdentity{
		{Owner: "owner", Name: "alpha"},
		{Owner: "owner", Name: "beta"},
	}, aggregator.recordedIdentities)
	require.Len(testInstance, renderer.renderedResults, 1)
	require.Equal(testInstance, expectedResults, renderer.renderedResults[0])
}

func TestServiceRunSkipsCheckoutsWithoutGitHubRemotes(testInstance *testing.T) {
	discoverer := &stubDiscoverer{repositories: []string{"/dev/alpha", "/dev/foreign", "/dev/broken"}}
	remoteReader := &stubRemoteReader{
		remoteByPath: map[string]string{
			"/dev/alpha":   "git@github.com:owner/alpha.git",
			"/dev/foreign": "git@gitlab.com:owner/foreign.git",
		},
		errorByPath: map[string]error{"/dev/broken": errors.New("exit status 1")},
	}
	aggregator := &stubAggregator{results: []metadata.RepoResult{{Repository: "owner/alpha"}}}
	renderer := &recordingRenderer{}

	service, creationError := glance.NewService(glance.ServiceDependencies{
		Discoverer:   discoverer,
		RemoteReader: remoteReader,
		Aggregator:   aggregator,
		Renderer:     renderer,
	})
	require.NoError(testInstance, creationError)

	runError := service.Run(context.Background(), []string{"/dev"})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, []metadata.RepoIdentity{{Owner: "owner", Name: "alpha"}}, aggregator.recordedIdentities)
}

func TestServiceRunReportsEmptyDiscovery(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	discoverer := &stubDiscoverer{}
	renderer := &recordingRenderer{}

	service, creationError := glance.NewService(glance.ServiceDependencies{
		Discoverer:   discoverer,
		RemoteReader: &stubRemoteReader{},
		Aggregator:   &stubAggregator{},
		Renderer:     renderer,
		Output:       shared.NewWriterReporter(&outputBuffer),
	})
	require.NoError(testInstance, creationError)

	runError := service.Run(context.Background(), []string{"/dev", "/projects"})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, "No git repositories found under /dev, /projects\n", outputBuffer.String())
	require.Empty(testInstance, renderer.renderedResults)
}

func TestServiceRunPrintsFetchFailures(testInstance *testing.T) {
	var errorBuffer bytes.Buffer
	discoverer := &stubDiscoverer{repositories: []string{"/dev/alpha"}}
	remoteReader := &stubRemoteReader{remoteByPath: map[string]string{"/dev/alpha": "git@github.com:owner/alpha.git"}}
	aggregator := &stubAggregator{
		failures: []metadata.FetchFailure{
			{
				Identity: metadata.RepoIdentity{Owner: "owner", Name: "alpha"},
				Cause:    metadata.TransportError{Backend: metadata.BackendREST, Cause: errors.New("connection refused")},
			},
		},
	}
	renderer := &recordingRenderer{}

	service, creationError := glance.NewService(glance.ServiceDependencies{
		Discoverer:   discoverer,
		RemoteReader: remoteReader,
		Aggregator:   aggregator,
		Renderer:     renderer,
		Errors:       shared.NewWriterReporter(&errorBuffer),
	})
	require.NoError(testInstance, creationError)

	runError := service.Run(context.Background(), []string{"/dev"})

	require.NoError(testInstance, runError)
	require.Contains(testInstance, errorBuffer.String(), "  Error: rest backend request failed: connection refused")
	require.Empty(testInstance, renderer.renderedResults)
}

func TestServiceRunPropagatesDiscoveryFailure(testInstance *testing.T) {
	discoverer := &stubDiscoverer{discoveryError: errors.New("permission denied")}

	service, creationError := glance.NewService(glance.ServiceDependencies{
		Discoverer:   discoverer,
		RemoteReader: &stubRemoteReader{},
		Aggregator:   &stubAggregator{},
		Renderer:     &recordingRenderer{},
	})
	require.NoError(testInstance, creationError)

	runError := service.Run(context.Background(), []string{"/dev"})

	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "permission denied")
}
