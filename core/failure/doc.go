// Package failure defines the error taxonomy shared by the remote clients and
// the reconciliation engine.
//
// Three outcomes besides success are distinguished:
//
//   - Not found: an expected negative lookup. Clients return it as a found=false
//     flag, never as an error. ErrNotFound exists only for records that vanish mid-run.
//   - Transport failure (*TransportError): the remote system could not be reached
//     or answered with an unexpected HTTP status.
//   - Logical failure (*LogicalError): the request was accepted at the HTTP level
//     but the remote system reported an application-level error.
//
// Both error types support errors.Is against ErrTransport and ErrLogical, so
// classification survives fmt.Errorf wrapping.
//
// # Usage
//
//	if errors.Is(err, failure.ErrLogical) {
//	    log.Error("rejected by target", zap.String("failure_kind", string(failure.KindOf(err))))
//	}
package failure
