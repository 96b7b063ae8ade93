// Package snipeit is a client for the Snipe-IT asset management REST API, the
// target system of the sync.
//
// # Result Semantics
//
// Every operation distinguishes three negative outcomes:
//
//   - Lookups (Find*) return found=false for a 404, an empty result, or an
//     embedded "status":"error" on the serial lookup. This is not an error.
//   - Network failures and unexpected HTTP statuses are *failure.TransportError.
//   - Mutations answered with 200/201 whose body reports "status":"error" are
//     *failure.LogicalError carrying the flattened messages.
//
// # Authentication and Pacing
//
// The API token is sent as a bearer credential on every request. An optional
// token bucket (golang.org/x/time/rate) is waited on before each request so the
// whole run stays under the server's request budget.
//
// # Usage
//
//	client := snipeit.NewClient(cfg.Target)
//	if err := client.Ping(ctx); err != nil {
//	    return err
//	}
//	asset, found, err := client.FindAssetBySerial(ctx, "C02XK0AAJG5H")
package snipeit
