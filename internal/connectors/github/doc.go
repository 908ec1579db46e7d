// Package github provides a corpus source backed by the GitHub API.
//
// The source fetches Markdown files from one repository using the git
// tree API (one call for all paths, one blob fetch per file) and
// throttles itself against GitHub's documented rate limits.
package github
