// Package transport holds what the page transports share: the configured
// Source, the closable Loader they all produce, opaque cursor encoding and
// the errors they report.
//
// Concrete adapters live in the subpackages:
//   - rest: GET requests following a "more" URL or path
//   - graphql: connection queries continued with pageInfo.endCursor
//   - rpc: a unary gRPC call carrying structpb messages
//   - ws: request/response frames over one WebSocket connection
//
// Adapter errors never reach paginator callers; the paginator turns them into
// empty pages. They are still wrapped with these sentinels so logs and tests
// can tell them apart.
package transport
