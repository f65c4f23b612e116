package api

import (
	"context"
	"net/http"
)

// Chat relays a support prompt through the backend's chat endpoint.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp struct {
		Reply    string `json:"reply"`
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, epChat, map[string]string{"message": message}, &resp); err != nil {
		return "", err
	}
	if resp.Reply != "" {
		return resp.Reply, nil
	}
	return resp.Response, nil
}
