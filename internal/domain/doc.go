// Package domain holds the entities, repository interfaces, and sentinel
// errors of the back office. It has no dependencies on transport, storage,
// or framework code.
package domain
