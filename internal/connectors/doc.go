// Package connectors holds the adapters that talk to systems outside the
// process: the filesystem source tree and the GitHub repository the FAQ is
// published to.
package connectors
