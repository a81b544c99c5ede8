package gmail

import (
	"context"
	"net/http"
	"time"

	"github.com/avoelkl/mietscout/internal/mail"
	"go.uber.org/zap"
)

const (
	apiURL    = "https://gmail.googleapis.com/gmail/v1"
	userAgent = "avoelkl/mietscout (avoelkl@posteo.de)"
)

type Client struct {
	// ctx bounds every outgoing http request
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) Search(params *SearchParams) (*mail.Messages, error) {
	return c.search(params)
}
