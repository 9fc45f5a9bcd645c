package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/faqgen/internal/core/domain"
	"github.com/custodia-labs/faqgen/internal/core/ports/driven"
	"github.com/custodia-labs/faqgen/internal/logger"
)

// maxDiffInBody keeps pull request bodies under GitHub's size limit.
const maxDiffInBody = 60000

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Publisher commits the document to a new branch and opens a pull request.
type Publisher struct {
	client       *Client
	owner        string
	repo         string
	baseBranch   string
	branchPrefix string
}

// NewPublisher creates a publisher from settings.
func NewPublisher(ctx context.Context, settings domain.PublishSettings, opts ...ClientOption) (*Publisher, error) {
	if settings.Token == "" {
		return nil, fmt.Errorf("github publisher: %w", domain.ErrMissingCredential)
	}
	if settings.Owner == "" || settings.Repo == "" {
		return nil, domain.ConfigError("publish", "owner and repo are required")
	}

	client, err := NewClientWithToken(ctx, settings.Token, opts...)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithClient(client, settings), nil
}

// NewPublisherWithClient creates a publisher on an existing client.
func NewPublisherWithClient(client *Client, settings domain.PublishSettings) *Publisher {
	base := settings.BaseBranch
	if base == "" {
		base = domain.DefaultBaseBranch
	}
	prefix := settings.BranchPrefix
	if prefix == "" {
		prefix = domain.DefaultBranchPrefix
	}
	return &Publisher{
		client:       client,
		owner:        settings.Owner,
		repo:         settings.Repo,
		baseBranch:   base,
		branchPrefix: prefix,
	}
}

// BranchName returns the branch a run publishes to.
func (p *Publisher) BranchName(runID string) string {
	short := strings.ReplaceAll(runID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return p.branchPrefix + "-" + short
}

// Publish commits req.Content to a run branch and opens a pull request.
// Re-publishing the same run reuses the branch and any open pull request.
func (p *Publisher) Publish(ctx context.Context, req driven.PublishRequest) (string, error) {
	if !req.Decision.Wrote() {
		return "", fmt.Errorf("nothing to publish for decision %s", req.Decision)
	}
	branch := p.BranchName(req.RunID)

	// 1. Branch from the base head
	sha, err := p.client.BranchSHA(ctx, p.owner, p.repo, p.baseBranch)
	if err != nil {
		return "", err
	}
	if err := p.client.CreateBranch(ctx, p.owner, p.repo, branch, sha); err != nil {
		if !IsUnprocessable(err) {
			return "", err
		}
		logger.Debug("branch %s already exists, reusing it", branch)
	}

	// 2. Commit the document
	fileSHA, err := p.client.FileSHA(ctx, p.owner, p.repo, req.Path, branch)
	if err != nil {
		return "", err
	}
	message := commitMessage(req)
	commit, err := p.client.PutFile(ctx, p.owner, p.repo, req.Path, branch, fileSHA, message, []byte(req.Content))
	if err != nil {
		return "", err
	}
	logger.Debug("committed %s to %s (%s)", req.Path, branch, commit)

	// 3. Open the pull request
	url, err := p.client.CreatePullRequest(ctx, p.owner, p.repo, &gh.NewPullRequest{
		Title: gh.Ptr(message),
		Head:  gh.Ptr(branch),
		Base:  gh.Ptr(p.baseBranch),
		Body:  gh.Ptr(pullRequestBody(req)),
	})
	if err == nil {
		return url, nil
	}
	if !IsUnprocessable(err) {
		return "", err
	}

	existing, listErr := p.client.OpenPullRequestURL(ctx, p.owner, p.repo, branch)
	if listErr != nil {
		return "", listErr
	}
	if existing == "" {
		return "", err
	}
	return existing, nil
}

func commitMessage(req driven.PublishRequest) string {
	if req.Decision == domain.DecisionCreate {
		return "docs: add " + req.Path
	}
	return "docs: update " + req.Path
}

func pullRequestBody(req driven.PublishRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated by faqgen run `%s`.\n", req.RunID)

	if req.Diff != "" {
		diff := req.Diff
		if len(diff) > maxDiffInBody {
			diff = diff[:maxDiffInBody] + "\n... (truncated)\n"
		}
		b.WriteString("\n```diff\n")
		b.WriteString(diff)
		if !strings.HasSuffix(diff, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}
