// Package integration provides end-to-end tests for the dedup plugin.
//
// The tests feed raw JSON events through the plugin the way a pipeline host
// does (decode, set up, process, encode) and check the identifiers that come
// out against values computed by an independent JSON.stringify-based
// implementation.
//
// Running the tests:
//
//	go test ./integration/...
//	go test -race ./integration/...
package integration
