// Package testutil contains builders and a testify mock used across tests to
// construct conversations and model responses with little boilerplate. It
// is not intended for production use.
package testutil
