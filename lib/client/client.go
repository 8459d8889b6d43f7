package client

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	neturl "net/url"
	"strings"

	"boscoin.io/devote/lib/common"
)

const (
	UrlPrefixForAPIV1 = "/api/v1"

	UrlAccount           = "/accounts/{id}"
	UrlTransactions      = "/transactions"
	UrlTransaction       = "/transactions/{id}"
	UrlTransactionStatus = "/transactions/{id}/status"
	UrlBallot            = "/ballot"
	UrlBallotChoices     = "/ballot/choices"
	UrlBallotVoters      = "/ballot/voters"
	UrlBallotVoter       = "/ballot/voters/{id}"
)

// Client talks to the ledger API. Reads go through `HTTP`, which retries
// failed requests; submissions go through `Submit`, which never retries,
// because a retried submission may land twice.
type Client struct {
	URL string

	HTTP   *common.HTTP2Client
	Submit *common.HTTP2Client
}

func NewClient(url string) *Client {
	c, err := NewClientWithConfig(url, common.NewConfig([]byte(common.DefaultNetworkID)))
	if err != nil {
		panic(err)
	}

	return c
}

func NewClientWithConfig(url string, config common.Config) (*Client, error) {
	read, err := common.NewPersistentHTTP2Client(
		config.ReadTimeout,
		0,
		false,
		common.DefaultRetrySetting(config.ReadRetries),
	)
	if err != nil {
		return nil, err
	}

	submit, err := common.NewHTTP2Client(config.SubmitTimeout, 0, false)
	if err != nil {
		return nil, err
	}

	return &Client{
		URL:    strings.TrimRight(url, "/"),
		HTTP:   read,
		Submit: submit,
	}, nil
}

func (c *Client) Close() {
	c.HTTP.Close()
	c.Submit.Close()
}

func (c *Client) toResponse(resp *http.Response, response interface{}) (err error) {
	defer resp.Body.Close()

	if !(resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices) {
		var b []byte
		if b, err = ioutil.ReadAll(resp.Body); err != nil {
			return
		}

		var p Problem
		if err = json.Unmarshal(b, &p); err != nil || p.Status == 0 {
			p = Problem{
				Type:   "about:blank",
				Title:  http.StatusText(resp.StatusCode),
				Status: resp.StatusCode,
				Detail: strings.TrimSpace(string(b)),
			}
		}
		return Error{Problem: p}
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return
	}
	return
}

func (c *Client) Get(ctx context.Context, path string, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Get(ctx, url, headers)
}

func (c *Client) Post(ctx context.Context, path string, body []byte, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.Submit.Post(ctx, url, body, headers)
}

// Load decodes the resource at `path` into v.
func (c *Client) Load(ctx context.Context, path string, v interface{}) (err error) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Get(ctx, path, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, v)
	return
}

func (c *Client) LoadAccount(ctx context.Context, id string) (account Account, err error) {
	err = c.Load(ctx, WithID(UrlAccount, id), &account)
	return
}

func (c *Client) LoadTransactionStatus(ctx context.Context, hash string) (status TransactionStatus, err error) {
	err = c.Load(ctx, WithID(UrlTransactionStatus, hash), &status)
	return
}

func (c *Client) SubmitTransaction(ctx context.Context, tx []byte) (post TransactionPost, err error) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	resp, err := c.Post(ctx, UrlTransactions, tx, headers)
	if err != nil {
		return
	}
	err = c.toResponse(resp, &post)
	return
}

func WithID(url, id string) string {
	return strings.Replace(url, "{id}", neturl.PathEscape(id), -1)
}
