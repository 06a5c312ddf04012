package metadata_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarenov/ghglance/internal/execshell"
	"github.com/dmarenov/ghglance/internal/metadata"
)

const testHelperSuccessPayloadConstant = `{
	"data": {
		"repository": {
			"stargazerCount": 42,
			"issues": {"totalCount": 3},
			"pullRequests": {"totalCount": 2},
			"releases": {"nodes": [{"tagName": "v1.4.0", "createdAt": "2024-11-20T10:30:00Z"}]},
			"defaultBranchRef": {"target": {"__typename": "Commit", "committedDate": "2024-12-31T23:58:00Z"}}
		}
	}
}`

const testHelperTaggedTipPayloadConstant = `{
	"data": {
		"repository": {
			"stargazerCount": 1,
			"issues": {"totalCount": 0},
			"pullRequests": {"totalCount": 0},
			"releases": {"nodes": []},
			"defaultBranchRef": {"target": {"__typename": "Tag", "target": {"committedDate": "2024-12-31T23:58:00Z"}}}
		}
	}
}`

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewCLIClientValidation(testInstance *testing.T) {
	formatter := metadata.NewRelativeTimeFormatter(newFixedClock(testInstance))

	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := metadata.NewCLIClient(nil, formatter)
		require.ErrorIs(testInstance, creationError, metadata.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})

	testInstance.Run("nil_formatter", func(testInstance *testing.T) {
		client, creationError := metadata.NewCLIClient(&stubGitHubExecutor{}, nil)
		require.ErrorIs(testInstance, creationError, metadata.ErrFormatterNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestCLIClientFetchRepositoryInfo(testInstance *testing.T) {
	testIdentity := metadata.RepoIdentity{Owner: "owner", Name: "example"}

	testCases := []struct {
		name            string
		executor        *stubGitHubExecutor
		expectedInfo    metadata.RepoInfo
		expectedError   error
		expectErrorType any
	}{
		{
			name: "combined_query_success",
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: testHelperSuccessPayloadConstant}, nil
			}},
			expectedInfo: metadata.RepoInfo{
				Activity:         "2 min ago",
				OpenIssues:       3,
				OpenPullRequests: 2,
				Stars:            42,
				ReleaseTag:       "v1.4.0",
				ReleaseDate:      "2024-11-20",
			},
		},
		{
			name: "tagged_branch_tip_resolves_through_tag",
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: testHelperTaggedTipPayloadConstant}, nil
			}},
			expectedInfo: metadata.RepoInfo{
				Activity:         "2 min ago",
				OpenIssues:       0,
				OpenPullRequests: 0,
				Stars:            1,
				ReleaseTag:       metadata.UnknownValuePlaceholder,
				ReleaseDate:      metadata.UnknownValuePlaceholder,
			},
		},
		{
			name: "null_repository_is_not_found",
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: `{"data": {"repository": null}}`}, nil
			}},
			expectedError: metadata.ErrRepositoryNotFound,
		},
		{
			name: "helper_failure_is_transport_error",
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, execshell.CommandFailedError{
					Command: execshell.ShellCommand{Name: execshell.CommandGitHub},
					Result:  execshell.ExecutionResult{ExitCode: 1},
				}
			}},
			expectErrorType: metadata.TransportError{},
		},
		{
			name: "empty_output_is_transport_error",
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: "  \n"}, nil
			}},
			expectErrorType: metadata.TransportError{},
		},
		{
			name: "garbage_output_is_transport_error",
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: "not-json"}, nil
			}},
			expectErrorType: metadata.TransportError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			formatter := metadata.NewRelativeTimeFormatter(newFixedClock(testInstance))
			client, creationError := metadata.NewCLIClient(testCase.executor, formatter)
			require.NoError(testInstance, creationError)

			repositoryInfo, fetchError := client.FetchRepositoryInfo(context.Background(), testIdentity)

			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, fetchError, testCase.expectedError)
			case testCase.expectErrorType != nil:
				require.Error(testInstance, fetchError)
				require.IsType(testInstance, testCase.expectErrorType, fetchError)
			default:
				require.NoError(testInstance, fetchError)
				require.Equal(testInstance, testCase.expectedInfo, repositoryInfo)
			}

			require.Len(testInstance, testCase.executor.recordedDetails, 1)
			require.Contains(testInstance, testCase.executor.recordedDetails[0].Arguments, "owner=owner")
			require.Contains(testInstance, testCase.executor.recordedDetails[0].Arguments, "name=example")
		})
	}
}
