package metadata

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

const (
	openIssueSearchTemplateConstant       = "repo:%s/%s type:issue state:open"
	openPullRequestSearchTemplateConstant = "repo:%s/%s type:pr state:open"
	searchResultsPerPageConstant          = 1
)

// RESTClient reassembles the repository summary from four REST calls. It is
// the slowest tier: four round trips and four independent failure chances.
type RESTClient struct {
	client    *github.Client
	formatter *RelativeTimeFormatter
}

// NewRESTClient constructs a REST client. An empty token yields an
// unauthenticated client subject to anonymous rate limits.
func NewRESTClient(token string, formatter *RelativeTimeFormatter) (*RESTClient, error) {
	var httpClient *http.Client
	if len(token) > 0 {
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), tokenSource)
	}
	return NewRESTClientWithClient(github.NewClient(httpClient), formatter)
}

// NewRESTClientWithClient wraps a preconfigured go-github client, primarily
// so tests can point at a local server.
func NewRESTClientWithClient(client *github.Client, formatter *RelativeTimeFormatter) (*RESTClient, error) {
	if formatter == nil {
		return nil, ErrFormatterNotConfigured
	}
	return &RESTClient{client: client, formatter: formatter}, nil
}

// FetchRepositoryInfo combines repository metadata, two open-item searches,
// and the latest-release lookup into one normalized record. A missing
// release is not a failure; every other non-2xx response is.
func (client *RESTClient) FetchRepositoryInfo(executionContext context.Context, identity RepoIdentity) (RepoInfo, error) {
	repository, repositoryResponse, repositoryError := client.client.Repositories.Get(executionContext, identity.Owner, identity.Name)
	if repositoryError != nil {
		if responseHasStatus(repositoryResponse, http.StatusNotFound) {
			return RepoInfo{}, ErrRepositoryNotFound
		}
		return RepoInfo{}, TransportError{Backend: BackendREST, Cause: repositoryError}
	}

	openIssueCount, issueSearchError := client.searchOpenItemCount(executionContext, fmt.Sprintf(openIssueSearchTemplateConstant, identity.Owner, identity.Name))
	if issueSearchError != nil {
		return RepoInfo{}, issueSearchError
	}

	openPullRequestCount, pullRequestSearchError := client.searchOpenItemCount(executionContext, fmt.Sprintf(openPullRequestSearchTemplateConstant, identity.Owner, identity.Name))
	if pullRequestSearchError != nil {
		return RepoInfo{}, pullRequestSearchError
	}

	repositoryInfo := RepoInfo{
		OpenIssues:       openIssueCount,
		OpenPullRequests: openPullRequestCount,
		Stars:            repository.GetStargazersCount(),
		ReleaseTag:       UnknownValuePlaceholder,
		ReleaseDate:      UnknownValuePlaceholder,
		Activity:         UnknownValuePlaceholder,
	}

	if pushedAt := repository.GetPushedAt(); !pushedAt.IsZero() {
		repositoryInfo.Activity = client.formatter.FormatTime(pushedAt.Time)
	}

	latestRelease, releaseResponse, releaseError := client.client.Repositories.GetLatestRelease(executionContext, identity.Owner, identity.Name)
	if releaseError != nil {
		if !responseHasStatus(releaseResponse, http.StatusNotFound) {
			return RepoInfo{}, TransportError{Backend: BackendREST, Cause: releaseError}
		}
		return repositoryInfo, nil
	}

	if tagName := latestRelease.GetTagName(); len(tagName) > 0 {
		repositoryInfo.ReleaseTag = tagName
	}
	if createdAt := latestRelease.GetCreatedAt(); !createdAt.IsZero() {
		repositoryInfo.ReleaseDate = createdAt.UTC().Format(releaseDateLayoutConstant)
	}

	return repositoryInfo, nil
}

func (client *RESTClient) searchOpenItemCount(executionContext context.Context, searchQuery string) (int, error) {
	searchOptions := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: searchResultsPerPageConstant}}
	searchResult, _, searchError := client.client.Search.Issues(executionContext, searchQuery, searchOptions)
	if searchError != nil {
		return 0, TransportError{Backend: BackendREST, Cause: searchError}
	}
	return searchResult.GetTotal(), nil
}

func responseHasStatus(response *github.Response, statusCode int) bool {
	return response != nil && response.Response != nil && response.StatusCode == statusCode
}
