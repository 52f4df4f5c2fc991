package service

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region client-struct
// Client calls a remote lexseg.Segmenter.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// Dial connects to a segmentation server without transport security.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection. Close does
// not close cc.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// #endregion constructor

// #region close
// Close shuts down a connection opened by Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region segment
// Segment asks the server to segment line.
func (c *Client) Segment(ctx context.Context, line string) (Result, error) {
	req, err := structpb.NewStruct(map[string]interface{}{fieldLine: line})
	if err != nil {
		return Result{}, fmt.Errorf("segment rpc: %w", err)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, segmentMethod, req, resp); err != nil {
		return Result{}, fmt.Errorf("segment rpc: %w", err)
	}
	res, err := resultFromStruct(resp)
	if err != nil {
		return Result{}, fmt.Errorf("segment rpc: %w", err)
	}
	return res, nil
}

// #endregion segment
