// Package redis provides Redis-backed implementations of driven ports:
// a shared summary cache and a run lock that keeps two runs from
// rewriting the same document at once.
package redis
