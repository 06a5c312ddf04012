package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmarenov/ghglance/internal/execshell"
)

const (
	apiSubcommandConstant      = "api"
	graphqlEndpointConstant    = "graphql"
	fieldFlagConstant          = "-f"
	ownerFieldTemplateConstant = "owner=%s"
	nameFieldTemplateConstant  = "name=%s"
	queryFieldTemplateConstant = "query=%s"

	executorNotConfiguredMessageConstant  = "github cli executor not configured"
	formatterNotConfiguredMessageConstant = "relative time formatter not configured"
	emptyHelperOutputMessageConstant      = "gh api produced no output"
	helperDecodingErrorTemplateConstant   = "decoding gh api output: %w"

	commitTypenameConstant         = "Commit"
	tagTypenameConstant            = "Tag"
	timestampDateSeparatorConstant = "T"
)

// repositorySummaryQueryConstant is the combined GraphQL document shared by
// the trusted-helper and token GraphQL backends. It resolves the committed
// date through an intermediate tag reference when the default branch tip is
// a tag rather than a commit.
const repositorySummaryQueryConstant = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    stargazerCount
    issues(states: OPEN) { totalCount }
    pullRequests(states: OPEN) { totalCount }
    releases(first: 1, orderBy: {field: CREATED_AT, direction: DESC}) {
      nodes { tagName createdAt }
    }
    defaultBranchRef {
      target {
        __typename
        ... on Commit { committedDate }
        ... on Tag { target { ... on Commit { committedDate } } }
      }
    }
  }
}`

// Construction validation sentinels for backend clients.
var (
	ErrExecutorNotConfigured  = errors.New(executorNotConfiguredMessageConstant)
	ErrFormatterNotConfigured = errors.New(formatterNotConfiguredMessageConstant)
)

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CLIClient fetches repository summaries through an authenticated GitHub CLI.
type CLIClient struct {
	executor  GitHubCommandExecutor
	formatter *RelativeTimeFormatter
}

// NewCLIClient constructs a trusted-helper backed client.
func NewCLIClient(executor GitHubCommandExecutor, formatter *RelativeTimeFormatter) (*CLIClient, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if formatter == nil {
		return nil, ErrFormatterNotConfigured
	}
	return &CLIClient{executor: executor, formatter: formatter}, nil
}

// FetchRepositoryInfo runs the combined query via gh api graphql and
// normalizes the captured output.
func (client *CLIClient) FetchRepositoryInfo(executionContext context.Context, identity RepoIdentity) (RepoInfo, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			graphqlEndpointConstant,
			fieldFlagConstant,
			fmt.Sprintf(ownerFieldTemplateConstant, identity.Owner),
			fieldFlagConstant,
			fmt.Sprintf(nameFieldTemplateConstant, identity.Name),
			fieldFlagConstant,
			fmt.Sprintf(queryFieldTemplateConstant, repositorySummaryQueryConstant),
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepoInfo{}, TransportError{Backend: BackendGitHubCLI, Cause: executionError}
	}

	if len(strings.TrimSpace(executionResult.StandardOutput)) == 0 {
		return RepoInfo{}, TransportError{Backend: BackendGitHubCLI, Cause: errors.New(emptyHelperOutputMessageConstant)}
	}

	var envelope struct {
		Data struct {
			Repository *repositorySummaryPayload `json:"repository"`
		} `json:"data"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &envelope); decodingError != nil {
		return RepoInfo{}, TransportError{Backend: BackendGitHubCLI, Cause: fmt.Errorf(helperDecodingErrorTemplateConstant, decodingError)}
	}

	if envelope.Data.Repository == nil {
		return RepoInfo{}, ErrRepositoryNotFound
	}

	return envelope.Data.Repository.toRepoInfo(client.formatter), nil
}

// repositorySummaryPayload mirrors the JSON shape of the combined query as
// emitted on the helper's standard output.
type repositorySummaryPayload struct {
	StargazerCount int `json:"stargazerCount"`
	Issues         struct {
		TotalCount int `json:"totalCount"`
	} `json:"issues"`
	PullRequests struct {
		TotalCount int `json:"totalCount"`
	} `json:"pullRequests"`
	Releases struct {
		Nodes []struct {
			TagName   string `json:"tagName"`
			CreatedAt string `json:"createdAt"`
		} `json:"nodes"`
	} `json:"releases"`
	DefaultBranchRef *struct {
		Target *struct {
			Typename      string `json:"__typename"`
			CommittedDate string `json:"committedDate"`
			Target        *struct {
				CommittedDate string `json:"committedDate"`
			} `json:"target"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
}

func (payload repositorySummaryPayload) toRepoInfo(formatter *RelativeTimeFormatter) RepoInfo {
	repositoryInfo := RepoInfo{
		OpenIssues:       payload.Issues.TotalCount,
		OpenPullRequests: payload.PullRequests.TotalCount,
		Stars:            payload.StargazerCount,
		ReleaseTag:       UnknownValuePlaceholder,
		ReleaseDate:      UnknownValuePlaceholder,
	}

	if len(payload.Releases.Nodes) > 0 {
		latestRelease := payload.Releases.Nodes[0]
		if len(latestRelease.TagName) > 0 {
			repositoryInfo.ReleaseTag = latestRelease.TagName
		}
		if len(latestRelease.CreatedAt) > 0 {
			repositoryInfo.ReleaseDate = truncateTimestampToDate(latestRelease.CreatedAt)
		}
	}

	committedDate := ""
	if payload.DefaultBranchRef != nil && payload.DefaultBranchRef.Target != nil {
		branchTarget := payload.DefaultBranchRef.Target
		switch branchTarget.Typename {
		case commitTypenameConstant:
			committedDate = branchTarget.CommittedDate
		case tagTypenameConstant:
			if branchTarget.Target != nil {
				committedDate = branchTarget.Target.CommittedDate
			}
		}
	}
	repositoryInfo.Activity = formatter.Format(committedDate)

	return repositoryInfo
}

func truncateTimestampToDate(timestamp string) string {
	datePart, _, _ := strings.Cut(timestamp, timestampDateSeparatorConstant)
	if len(datePart) == 0 {
		return UnknownValuePlaceholder
	}
	return datePart
}
