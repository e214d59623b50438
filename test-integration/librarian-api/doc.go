// Package integration provides integration tests for the asset-librarian server.
// These tests run the complete server lifecycle against file, Git and API
// catalog sources and check the partitioned libraries over HTTP.
package integration
