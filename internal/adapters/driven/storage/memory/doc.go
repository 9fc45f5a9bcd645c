// Package memory provides in-memory implementations of driven port interfaces.
// They back dry runs and tests, and nothing survives the process.
package memory
