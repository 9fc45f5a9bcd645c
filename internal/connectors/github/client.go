package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with the calls needed to publish a document.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) error {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parse base URL: %w", err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *Client) error {
		c.rateLimiter = r
		return nil
	}
}

// NewClientWithToken creates a GitHub client with a static access token.
// Works for both PAT and OAuth access tokens.
func NewClientWithToken(ctx context.Context, token string, opts ...ClientOption) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return newClient(tc, opts...)
}

// NewClientWithHTTPClient creates a GitHub client with a custom http.Client.
func NewClientWithHTTPClient(httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	return newClient(httpClient, opts...)
}

func newClient(httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{
		gh:          gh.NewClient(httpClient),
		rateLimiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BranchSHA returns the commit SHA at the head of a branch.
func (c *Client) BranchSHA(ctx context.Context, owner, repo, branch string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	ref, resp, err := c.gh.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		err = c.wrapError(resp, err, "get ref")
		if IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrBranchNotFound, branch)
		}
		return "", err
	}

	c.updateRateLimitFromResponse(resp)
	return ref.GetObject().GetSHA(), nil
}

// CreateBranch creates branch at sha.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, resp, err := c.gh.Git.CreateRef(ctx, owner, repo, gh.CreateRef{
		Ref: "refs/heads/" + branch,
		SHA: sha,
	})
	if err != nil {
		return c.wrapError(resp, err, "create ref")
	}

	c.updateRateLimitFromResponse(resp)
	return nil
}

// FileSHA returns the blob SHA of a file on a branch, or "" if it does not exist.
func (c *Client) FileSHA(ctx context.Context, owner, repo, path, branch string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: branch}
	content, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		err = c.wrapError(resp, err, "get contents")
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	c.updateRateLimitFromResponse(resp)

	if content == nil {
		return "", ErrNotAFile
	}
	return content.GetSHA(), nil
}

// PutFile creates or updates a file on a branch and returns the commit SHA.
// sha must be the current blob SHA when updating, or "" when creating.
func (c *Client) PutFile(ctx context.Context, owner, repo, path, branch, sha, message string, content []byte) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: content,
		Branch:  gh.Ptr(branch),
	}

	var (
		result *gh.RepositoryContentResponse
		resp   *gh.Response
		err    error
	)
	if sha == "" {
		result, resp, err = c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
	} else {
		opts.SHA = gh.Ptr(sha)
		result, resp, err = c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	}
	if err != nil {
		return "", c.wrapError(resp, err, "put contents")
	}

	c.updateRateLimitFromResponse(resp)
	return result.GetSHA(), nil
}

// CreatePullRequest opens a pull request and returns its URL.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, pr *gh.NewPullRequest) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	created, resp, err := c.gh.PullRequests.Create(ctx, owner, repo, pr)
	if err != nil {
		return "", c.wrapError(resp, err, "create pull request")
	}

	c.updateRateLimitFromResponse(resp)
	return created.GetHTMLURL(), nil
}

// OpenPullRequestURL returns the URL of an open pull request from head, or "".
func (c *Client) OpenPullRequestURL(ctx context.Context, owner, repo, head string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{
		State:       "open",
		Head:        owner + ":" + head,
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return "", c.wrapError(resp, err, "list pull requests")
	}

	c.updateRateLimitFromResponse(resp)
	if len(prs) == 0 {
		return "", nil
	}
	return prs[0].GetHTMLURL(), nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(resp *gh.Response, err error, operation string) error {
	if err == nil {
		return nil
	}

	if resp != nil && resp.Response != nil {
		if rlErr := c.rateLimiter.CheckRateLimit(resp.Response); rlErr != nil {
			return rlErr
		}
	}

	// Check for rate limit error
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	// Check for GitHub error response
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
