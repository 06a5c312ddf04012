package metadata

import (
	"context"
	"net/http"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const (
	graphqlOwnerVariableNameConstant = "owner"
	graphqlNameVariableNameConstant  = "name"
	graphqlNotFoundFragmentConstant  = "Could not resolve to a Repository"
)

// repositorySummaryQuery mirrors repositorySummaryQueryConstant as a
// githubv4 struct query.
type repositorySummaryQuery struct {
	Repository struct {
		StargazerCount int
		Issues         struct {
			TotalCount int
		} `graphql:"issues(states: OPEN)"`
		PullRequests struct {
			TotalCount int
		} `graphql:"pullRequests(states: OPEN)"`
		Releases struct {
			Nodes []struct {
				TagName   string
				CreatedAt githubv4.DateTime
			}
		} `graphql:"releases(first: 1, orderBy: {field: CREATED_AT, direction: DESC})"`
		DefaultBranchRef *struct {
			Target struct {
				Typename string `graphql:"__typename"`
				Commit   struct {
					CommittedDate githubv4.DateTime
				} `graphql:"... on Commit"`
				Tag struct {
					Target struct {
						Commit struct {
							CommittedDate githubv4.DateTime
						} `graphql:"... on Commit"`
					}
				} `graphql:"... on Tag"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// GraphQLClient fetches repository summaries with a single combined query
// over an authenticated transport.
type GraphQLClient struct {
	client    *githubv4.Client
	formatter *RelativeTimeFormatter
}

// NewGraphQLClient constructs a client authenticated with the provided bearer token.
func NewGraphQLClient(token string, formatter *RelativeTimeFormatter) (*GraphQLClient, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	return newGraphQLClient(githubv4.NewClient(httpClient), formatter)
}

// NewGraphQLClientForEndpoint constructs a client against an alternate
// GraphQL endpoint, primarily for tests.
func NewGraphQLClientForEndpoint(endpointURL string, httpClient *http.Client, formatter *RelativeTimeFormatter) (*GraphQLClient, error) {
	return newGraphQLClient(githubv4.NewEnterpriseClient(endpointURL, httpClient), formatter)
}

func newGraphQLClient(client *githubv4.Client, formatter *RelativeTimeFormatter) (*GraphQLClient, error) {
	if formatter == nil {
		return nil, ErrFormatterNotConfigured
	}
	return &GraphQLClient{client: client, formatter: formatter}, nil
}

// FetchRepositoryInfo issues the combined query and normalizes the response.
func (client *GraphQLClient) FetchRepositoryInfo(executionContext context.Context, identity RepoIdentity) (RepoInfo, error) {
	var query repositorySummaryQuery
	queryVariables := map[string]interface{}{
		graphqlOwnerVariableNameConstant: githubv4.String(identity.Owner),
		graphqlNameVariableNameConstant:  githubv4.String(identity.Name),
	}

	if queryError := client.client.Query(executionContext, &query, queryVariables); queryError != nil {
		if strings.Contains(queryError.Error(), graphqlNotFoundFragmentConstant) {
			return RepoInfo{}, ErrRepositoryNotFound
		}
		return RepoInfo{}, TransportError{Backend: BackendGraphQL, Cause: queryError}
	}

	repositoryInfo := RepoInfo{
		OpenIssues:       query.Repository.Issues.TotalCount,
		OpenPullRequests: query.Repository.PullRequests.TotalCount,
		Stars:            query.Repository.StargazerCount,
		ReleaseTag:       UnknownValuePlaceholder,
		ReleaseDate:      UnknownValuePlaceholder,
	}

	if len(query.Repository.Releases.Nodes) > 0 {
		latestRelease := query.Repository.Releases.Nodes[0]
		if len(latestRelease.TagName) > 0 {
			repositoryInfo.ReleaseTag = latestRelease.TagName
		}
		if !latestRelease.CreatedAt.IsZero() {
			repositoryInfo.ReleaseDate = latestRelease.CreatedAt.UTC().Format(releaseDateLayoutConstant)
		}
	}

	repositoryInfo.Activity = UnknownValuePlaceholder
	if query.Repository.DefaultBranchRef != nil {
		branchTarget := query.Repository.DefaultBranchRef.Target
		switch branchTarget.Typename {
		case commitTypenameConstant:
			repositoryInfo.Activity = client.formatter.FormatTime(branchTarget.Commit.CommittedDate.Time)
		case tagTypenameConstant:
			repositoryInfo.Activity = client.formatter.FormatTime(branchTarget.Tag.Target.Commit.CommittedDate.Time)
		}
	}

	return repositoryInfo, nil
}
