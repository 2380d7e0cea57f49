// Package gateway is the Go client for the runbook APIs.
//
// It covers the external generator (upload URLs, generation, prompt
// enhancement), the direct blob upload and the two conversion endpoints,
// and chains them into the full client sequence with Run.
package gateway
