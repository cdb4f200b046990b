package azuredevops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	basicAuthorizationPrefixConstant          = "Basic "
	basicAuthorizationUsernameConstant        = ""
	basicAuthorizationSeparatorConstant       = ":"
	authorizationHeaderNameConstant           = "Authorization"
	repositoriesEndpointTemplateConstant      = "%s/%s/%s/_apis/git/repositories?api-version=%s"
	repositoriesAPIVersionConstant            = "5.0"
	cloneURLTemplateConstant                  = "%s/%s/%s/_git/%s"
	baseURLFieldNameConstant                  = "tfs_url"
	organizationFieldNameConstant             = "azure_devops_organization"
	personalAccessTokenFieldNameConstant      = "azure_devops_pat_token"
	requiredValueMessageConstant              = "value required"
	httpClientNotConfiguredMessageConstant    = "http client not configured"
	listRequestCreationErrorTemplateConstant  = "unable to build repository listing request: %w"
	listRequestExecutionErrorTemplateConstant = "repository listing request failed: %w"
	listResponseStatusErrorTemplateConstant   = "repository listing returned status %d: %s"
	listResponseDecodingErrorTemplate         = "unable to decode repository listing: %w"
	invalidInputErrorTemplateConstant         = "%s: %s"
)

// HTTPDoer executes HTTP requests, typically *http.Client.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Repository describes a Git repository hosted in the collection.
type Repository struct {
	Name string `json:"name"`
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

// Client issues authenticated requests against an Azure DevOps collection.
type Client struct {
	baseURL             string
	organization        string
	personalAccessToken string
	httpClient          HTTPDoer
}

// NewClient constructs a client for the supplied collection coordinates.
func NewClient(baseURL string, organization string, personalAccessToken string, httpClient HTTPDoer) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(trimmedBaseURL) == 0 {
		return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedOrganization := strings.TrimSpace(organization)
	if len(trimmedOrganization) == 0 {
		return nil, InvalidInputError{FieldName: organizationFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedToken := strings.TrimSpace(personalAccessToken)
	if len(trimmedToken) == 0 {
		return nil, InvalidInputError{FieldName: personalAccessTokenFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}

	return &Client{
		baseURL:             trimmedBaseURL,
		organization:        trimmedOrganization,
		personalAccessToken: trimmedToken,
		httpClient:          httpClient,
	}, nil
}

// BasicAuthorizationHeader encodes a personal access token as a blank-username
// Basic authorization header value.
func BasicAuthorizationHeader(personalAccessToken string) string {
	credentialPair := basicAuthorizationUsernameConstant + basicAuthorizationSeparatorConstant + personalAccessToken
	encodedCredentialPair := base64.StdEncoding.EncodeToString([]byte(credentialPair))
	return basicAuthorizationPrefixConstant + encodedCredentialPair
}

// ListRepositories enumerates the Git repositories of the supplied project.
func (client *Client) ListRepositories(executionContext context.Context, project string) ([]Repository, error) {
	listingURL := fmt.Sprintf(
		repositoriesEndpointTemplateConstant,
		client.baseURL,
		url.PathEscape(client.organization),
		url.PathEscape(project),
		repositoriesAPIVersionConstant,
	)

	listingRequest, requestCreationError := http.NewRequestWithContext(executionContext, http.MethodGet, listingURL, nil)
	if requestCreationError != nil {
		return nil, fmt.Errorf(listRequestCreationErrorTemplateConstant, requestCreationError)
	}
	listingRequest.Header.Set(authorizationHeaderNameConstant, BasicAuthorizationHeader(client.personalAccessToken))

	listingResponse, requestExecutionError := client.httpClient.Do(listingRequest)
	if requestExecutionError != nil {
		return nil, fmt.Errorf(listRequestExecutionErrorTemplateConstant, requestExecutionError)
	}
	defer listingResponse.Body.Close()

	if listingResponse.StatusCode < http.StatusOK || listingResponse.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf(listResponseStatusErrorTemplateConstant, listingResponse.StatusCode, listingURL)
	}

	var listingPayload struct {
		Value []Repository `json:"value"`
	}
	if decodingError := json.NewDecoder(listingResponse.Body).Decode(&listingPayload); decodingError != nil {
		return nil, fmt.Errorf(listResponseDecodingErrorTemplate, decodingError)
	}

	return listingPayload.Value, nil
}

// RepositoryCloneURL derives the Git clone URL of a repository in the collection.
func (client *Client) RepositoryCloneURL(project string, repositoryName string) string {
	return fmt.Sprintf(
		cloneURLTemplateConstant,
		client.baseURL,
		url.PathEscape(client.organization),
		url.PathEscape(project),
		url.PathEscape(repositoryName),
	)
}
