// Package services provides the error taxonomy and request-scoped context
// helpers shared by the pipeline, daemon, and CLI.
//
// Errors are classified by wrapping them with sentinel markers via Wrap;
// HTTPStatus and Kind translate a classified error into the API surface's
// status code and machine-readable kind.
package services
