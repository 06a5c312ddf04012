package metadata

import (
	"context"

	"go.uber.org/zap"
)

const (
	fallbackAttemptMessageConstant   = "structured query failed, retrying over REST"
	repositoryFetchedMessageConstant = "repository summary fetched"
	repositorySkippedMessageConstant = "repository skipped"
	logFieldRepositoryConstant       = "repository"
	logFieldBackendConstant          = "backend"
)

// FetchFailure describes a repository that could not be summarized.
type FetchFailure struct {
	Identity RepoIdentity
	Cause    error
}

// FailureObserver receives per-repository failures as they occur.
type FailureObserver func(failure FetchFailure)

// AggregatorDependencies captures the collaborators for backend selection.
// Clients for unavailable tiers may be nil.
type AggregatorDependencies struct {
	HelperClient  RepositoryInfoFetcher
	GraphQLClient RepositoryInfoFetcher
	RESTClient    RepositoryInfoFetcher
	Availability  BackendAvailability
	Logger        *zap.Logger
}

// Aggregator orchestrates backend selection and fallback ordering per
// repository, strictly sequentially and in input order.
type Aggregator struct {
	dependencies AggregatorDependencies
}

// NewAggregator constructs an Aggregator from the provided dependencies.
func NewAggregator(dependencies AggregatorDependencies) *Aggregator {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Aggregator{dependencies: dependencies}
}

// FetchAll summarizes every identity one at a time, preserving input order.
// A failed repository is reported to the observer and dropped; it never
// aborts the remaining sequence.
func (aggregator *Aggregator) FetchAll(executionContext context.Context, identities []RepoIdentity, observeFailure FailureObserver) []RepoResult {
	results := make([]RepoResult, 0, len(identities))

	for _, identity := range identities {
		repositoryInfo, fetchError := aggregator.fetchOne(executionContext, identity)
		if fetchError != nil {
			aggregator.dependencies.Logger.Debug(
				repositorySkippedMessageConstant,
				zap.String(logFieldRepositoryConstant, identity.String()),
				zap.Error(fetchError),
			)
			if observeFailure != nil {
				observeFailure(FetchFailure{Identity: identity, Cause: fetchError})
			}
			continue
		}

		aggregator.dependencies.Logger.Debug(
			repositoryFetchedMessageConstant,
			zap.String(logFieldRepositoryConstant, identity.String()),
		)
		results = append(results, RepoResult{Repository: identity.String(), Info: repositoryInfo})
	}

	return results
}

// fetchOne applies the tier ordering: the trusted helper when available
// (no fallback afterwards), otherwise the token GraphQL client with at most
// one REST retry. Each tier gets a single attempt.
func (aggregator *Aggregator) fetchOne(executionContext context.Context, identity RepoIdentity) (RepoInfo, error) {
	if aggregator.dependencies.Availability.HelperAvailable && aggregator.dependencies.HelperClient != nil {
		return aggregator.dependencies.HelperClient.FetchRepositoryInfo(executionContext, identity)
	}

	if !aggregator.dependencies.Availability.TokenPresent || aggregator.dependencies.GraphQLClient == nil {
		return RepoInfo{}, MissingCredentialError{Identity: identity}
	}

	repositoryInfo, graphqlError := aggregator.dependencies.GraphQLClient.FetchRepositoryInfo(executionContext, identity)
	if graphqlError == nil {
		return repositoryInfo, nil
	}

	if aggregator.dependencies.RESTClient == nil {
		return RepoInfo{}, graphqlError
	}

	// The retry fires on any structured-query failure, not-found included,
	// matching the helper-less flow of the original tool.
	aggregator.dependencies.Logger.Debug(
		fallbackAttemptMessageConstant,
		zap.String(logFieldRepositoryConstant, identity.String()),
		zap.String(logFieldBackendConstant, string(BackendREST)),
		zap.Error(graphqlError),
	)

	return aggregator.dependencies.RESTClient.FetchRepositoryInfo(executionContext, identity)
}
