// Package blobstore reads and writes runbook blobs.
//
// AzureStore talks to one Azure Blob Storage container. MemoryStore keeps
// blobs in process and backs tests and local runs without an account.
package blobstore
