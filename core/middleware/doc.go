// Package middleware groups the Fiber handlers mounted in front of the
// serve command's routes.
//
//   - auth: compares the X-API-Key header (or the api_key query parameter)
//     against the configured key in constant time and answers 401 with a JSON
//     error body. Paths in Config.Skip bypass it and an empty key turns the
//     check off.
//   - rayid: tags each request with a ray id, reusing an inbound X-Ray-ID
//     header or minting a UUID. The id is echoed on the response and stored in
//     the "ray_id" local that logger.WithRayID reads.
//
// rayid is registered before auth so rejected requests still carry an id.
package middleware
