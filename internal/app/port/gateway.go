package port

import "context"

// GatewayClient fetches a content-addressed or plain HTTP document,
// handling mirror fallback for unreliable gateway schemes.
type GatewayClient interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
