package gmail

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const (
	contentType    = "application/json"
	acceptEncoding = "gzip, deflate, br"
)

// Item is one loosely typed element of a Gmail list response.
type Item interface{}

// listPage mirrors one page of the messages list endpoint.
type listPage struct {
	Messages           []Item
	NextPageToken      string
	ResultSizeEstimate int `json:"resultSizeEstimate"`
}

// GetItems collects message references from a list endpoint, following
// continuation tokens until limit references are fetched or the pages run
// out.
func (c *Client) GetItems(endpoint string, q url.Values, limit int) ([]Item, error) {
	req, err := c.newGetRequest(endpoint, q)
	if err != nil {
		return nil, err
	}

	var items []Item
	for {
		var page listPage
		if err := c.do(req, &page); err != nil {
			return nil, err
		}

		items = append(items, page.Messages...)
		c.logger.Debug("got message page",
			zap.Int("result size estimate", page.ResultSizeEstimate),
			zap.Int("collected", len(items)),
		)

		if page.NextPageToken == "" || len(items) >= limit {
			break
		}

		params := req.URL.Query()
		params.Set("pageToken", page.NextPageToken)
		req.URL.RawQuery = params.Encode()
	}

	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

func (c *Client) getJSON(endpoint string, q url.Values, target interface{}) error {
	req, err := c.newGetRequest(endpoint, q)
	if err != nil {
		return err
	}

	return c.do(req, target)
}

func (c *Client) newGetRequest(endpoint string, q url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("Content-Type", contentType)

	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return req, nil
}

// do executes the request and decodes the JSON body into target, which may
// be nil when only the status matters. Compressed bodies are transparently
// unpacked.
func (c *Client) do(req *http.Request, target interface{}) error {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}
