package control

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client talks to a daemon's control service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial returns a Client whose connections are made by dial. No I/O happens
// until the first call.
func Dial(dial func(ctx context.Context) (net.Conn, error)) (*Client, error) {
	conn, err := grpc.NewClient("passthrough:///autoclip",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return dial(ctx) }),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial control socket: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Status calls autoclip.v1.Control/Status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.conn.Invoke(ctx, statusMethod, &StatusRequest{}, out); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return out, nil
}

func (c *Client) Close() error { return c.conn.Close() }
