// Package github publishes the generated document to a GitHub repository
// as a pull request.
//
// A publish makes these calls:
//
//  1. Resolve the head commit of the base branch.
//  2. Create a run branch named <prefix>-<first 8 characters of the run id>.
//  3. Create or update the document through the contents API.
//  4. Open a pull request from the run branch into the base branch.
//
// Branches and pull requests that already exist for a run are reused, so a
// retried publish does not fail.
//
// # Rate Limiting
//
// The client implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits requests to about 1.2 per
//     second after a small burst.
//
//  2. Reactive handling: the client monitors X-RateLimit-Remaining and
//     X-RateLimit-Reset headers. When limits are exhausted, it waits until
//     the reset time before continuing.
//
// # Authentication
//
// A personal access token or the GITHUB_TOKEN of a workflow run. The token
// needs contents and pull request write access.
package github
