// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is: aggregate → chunk → summarise (concurrently, with
// retries) → synthesise → persist only a genuine change → publish.
package services
