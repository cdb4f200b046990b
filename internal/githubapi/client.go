package githubapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultAPIBaseURLConstant                  = "https://api.github.com"
	tokenAuthorizationPrefixConstant           = "token "
	authorizationHeaderNameConstant            = "Authorization"
	repositoryEndpointTemplateConstant         = "%s/repos/%s/%s"
	pushURLTemplateConstant                    = "https://github.com/%s/%s.git"
	tokenFieldNameConstant                     = "github_token"
	requiredValueMessageConstant               = "value required"
	httpClientNotConfiguredMessageConstant     = "http client not configured"
	existenceRequestCreationErrorTemplateConst = "unable to build repository existence request: %w"
	existenceRequestExecutionErrorTemplate     = "repository existence request failed: %w"
	invalidInputErrorTemplateConstant          = "%s: %s"
)

// HTTPDoer executes HTTP requests, typically *http.Client.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// InvalidInputError surfaces client construction validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// ErrHTTPClientNotConfigured indicates the client was constructed without a doer.
var ErrHTTPClientNotConfigured = errors.New(httpClientNotConfiguredMessageConstant)

// Client issues authenticated requests against the GitHub API.
type Client struct {
	apiBaseURL string
	token      string
	httpClient HTTPDoer
}

// NewClient constructs a client that talks to the public GitHub API.
func NewClient(token string, httpClient HTTPDoer) (*Client, error) {
	return NewClientWithBaseURL(defaultAPIBaseURLConstant, token, httpClient)
}

// NewClientWithBaseURL constructs a client against an explicit API base URL.
func NewClientWithBaseURL(apiBaseURL string, token string, httpClient HTTPDoer) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, InvalidInputError{FieldName: tokenFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}

	return &Client{
		apiBaseURL: strings.TrimRight(strings.TrimSpace(apiBaseURL), "/"),
		token:      trimmedToken,
		httpClient: httpClient,
	}, nil
}

// TokenAuthorizationHeader renders a token authorization header value.
func TokenAuthorizationHeader(token string) string {
	return tokenAuthorizationPrefixConstant + token
}

// RepositoryExists reports whether the organization owns the named repository.
//
// Any non-200 status, including 404 and authorization failures, is reported as
// the repository not existing; only transport failures surface as errors.
func (client *Client) RepositoryExists(executionContext context.Context, organization string, repositoryName string) (bool, error) {
	existenceURL := fmt.Sprintf(
		repositoryEndpointTemplateConstant,
		client.apiBaseURL,
		url.PathEscape(organization),
		url.PathEscape(repositoryName),
	)

	existenceRequest, requestCreationError := http.NewRequestWithContext(executionContext, http.MethodGet, existenceURL, nil)
	if requestCreationError != nil {
		return false, fmt.Errorf(existenceRequestCreationErrorTemplateConst, requestCreationError)
	}
	existenceRequest.Header.Set(authorizationHeaderNameConstant, TokenAuthorizationHeader(client.token))

	existenceResponse, requestExecutionError := client.httpClient.Do(existenceRequest)
	if requestExecutionError != nil {
		return false, fmt.Errorf(existenceRequestExecutionErrorTemplate, requestExecutionError)
	}
	defer existenceResponse.Body.Close()
	_, _ = io.Copy(io.Discard, existenceResponse.Body)

	return existenceResponse.StatusCode == http.StatusOK, nil
}

// RepositoryPushURL derives the HTTPS push URL for an organization repository.
func RepositoryPushURL(organization string, repositoryName string) string {
	return fmt.Sprintf(pushURLTemplateConstant, url.PathEscape(organization), url.PathEscape(repositoryName))
}
