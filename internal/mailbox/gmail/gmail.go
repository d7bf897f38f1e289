// Package gmail implements the mailbox interface against the Gmail REST API
// using a pre-issued OAuth bearer token.
package gmail

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://gmail.googleapis.com"
	userAgent = "hireflow (automated recruiting assistant)"
	userID    = "me"
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) request(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("make gmail request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	return c.HTTPClient.Do(req)
}
