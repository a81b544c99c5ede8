package gmail

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/avoelkl/mietscout/internal/logger"
	"github.com/avoelkl/mietscout/internal/mail"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	listPath = "/users/me/messages"

	defaultDaysBack   = 7
	defaultMaxResults = 50
)

type SearchParams struct {
	// Query is prepended to the generated date filter.
	Query      string `mapstructure:"query"`
	DaysBack   int    `mapstructure:"days-back"`
	MaxResults int    `mapstructure:"max-results"`
}

type messageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

func (c *Client) search(params *SearchParams) (*mail.Messages, error) {
	if params == nil {
		params = &SearchParams{}
	}

	daysBack := params.DaysBack
	if daysBack <= 0 {
		daysBack = defaultDaysBack
	}

	limit := params.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	q := url.Values{}
	q.Set("q", buildQuery(params.Query, daysBack, time.Now()))
	q.Set("maxResults", strconv.Itoa(limit))

	apiURLList := fmt.Sprintf("%s%s", c.APIURL, listPath)

	items, err := c.GetItems(apiURLList, q, limit)
	if err != nil {
		return nil, err
	}

	var refs []*messageRef
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &refs,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	decoder.Decode(items)

	messages := make([]*mail.Message, 0, len(refs))
	for _, ref := range refs {
		if ref == nil || ref.ID == "" {
			continue
		}

		msg, err := c.getMessage(ref.ID)
		if err != nil {
			c.logger.Warn("skipping unreadable message",
				zap.String(logger.FieldEmailID, ref.ID),
				zap.Error(err),
			)
			continue
		}

		messages = append(messages, msg)
	}

	return &mail.Messages{
		Items: messages,
	}, nil
}

// buildQuery builds the Gmail search expression. The window is widened by
// one day so messages from today survive timezone skew, matching the
// after: filter granularity of whole days.
func buildQuery(extra string, daysBack int, now time.Time) string {
	end := now.AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -(daysBack + 1))

	query := fmt.Sprintf("after:%s", start.Format("2006/01/02"))
	if extra != "" {
		query = fmt.Sprintf("%s %s", extra, query)
	}

	return query
}
