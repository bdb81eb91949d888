package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start asks the daemon to begin driving the experience.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Longtake.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to stop driving the experience.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Longtake.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Longtake.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Navigate issues a navigation intent.
func (c *Client) Navigate(intent, target string) (*NavigateResponse, error) {
	var resp NavigateResponse
	req := NavigateRequest{Intent: intent, Target: target}
	if err := c.client.Call("Longtake.Navigate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InputWheel feeds a wheel delta through the gesture gateway.
func (c *Client) InputWheel(delta float64) (*GestureResponse, error) {
	var resp GestureResponse
	if err := c.client.Call("Longtake.InputWheel", WheelRequest{Delta: delta}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InputTouch feeds a swipe distance through the gesture gateway.
func (c *Client) InputTouch(distance float64) (*GestureResponse, error) {
	var resp GestureResponse
	if err := c.client.Call("Longtake.InputTouch", TouchRequest{Distance: distance}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JournalList returns recent committed transitions.
func (c *Client) JournalList(limit int) (*JournalListResponse, error) {
	var resp JournalListResponse
	if err := c.client.Call("Longtake.JournalList", JournalListRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Mute persists the sound preference.
func (c *Client) Mute(muted bool) (*MuteResponse, error) {
	var resp MuteResponse
	if err := c.client.Call("Longtake.Mute", MuteRequest{Muted: muted}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
