// Package mosyle is a client for the Mosyle Business API, the source directory
// of the sync.
//
// A session is established once with Login, which exchanges the configured
// access token, email and password for a JWT. ListDevices then pages through
// listdevices for one device class (ios, mac, tvos) and converts each wire
// record into a reconcile.Device. Only the columns the sync reads are requested.
//
// Errors follow the failure package: HTTP and network problems are transport
// failures, a non-OK status in the body is a logical failure, and
// DEVICES_NOTFOUND is an empty result.
package mosyle
