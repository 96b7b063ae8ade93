// Package utils provides small helpers shared by the remote clients and the
// reconciliation engine: loose numeric decoding for inconsistent JSON payloads
// and random credential generation.
package utils
