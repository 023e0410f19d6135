package ton

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Transfer is one incoming TON payment seen on the platform wallet.
type Transfer struct {
	Hash   string
	From   string
	Amount float64 // TON
	Memo   string
	Utime  int64
}

// Client reads incoming transfers from a toncenter-compatible HTTP api.
type Client struct {
	http   *resty.Client
	wallet string
	apiKey string
}

func NewClient() *Client {
	apiUrl := os.Getenv("TON_API_URL")
	if apiUrl == "" {
		apiUrl = "https://toncenter.com/api/v2"
	}
	client := resty.New().
		SetBaseURL(apiUrl).
		SetTimeout(15 * time.Second).
		SetRetryCount(2)
	return &Client{
		http:   client,
		wallet: os.Getenv("TON_WALLET_ADDRESS"),
		apiKey: os.Getenv("TON_API_KEY"),
	}
}

type txResponse struct {
	Ok     bool     `json:"ok"`
	Result []txItem `json:"result"`
}

type txItem struct {
	Utime         int64 `json:"utime"`
	TransactionId struct {
		Hash string `json:"hash"`
	} `json:"transaction_id"`
	InMsg struct {
		Source      string `json:"source"`
		Destination string `json:"destination"`
		Value       string `json:"value"` // nanotons
		Message     string `json:"message"`
	} `json:"in_msg"`
}

// IncomingTransfers fetches the latest transactions on the platform wallet
// and keeps the inbound ones that carry a value and a memo.
func (c *Client) IncomingTransfers(ctx context.Context, limit int) ([]Transfer, error) {
	if c.wallet == "" {
		return nil, errors.New("TON_WALLET_ADDRESS is not set")
	}
	var body txResponse
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("address", c.wallet).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&body)
	if c.apiKey != "" {
		req.SetHeader("X-API-Key", c.apiKey)
	}
	resp, err := req.Get("/getTransactions")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, errors.New("ton api status " + resp.Status())
	}
	if !body.Ok {
		return nil, errors.New("ton api returned not ok")
	}
	transfers := make([]Transfer, 0, len(body.Result))
	for _, item := range body.Result {
		if item.InMsg.Source == "" || item.InMsg.Message == "" {
			continue
		}
		nano, err := strconv.ParseInt(item.InMsg.Value, 10, 64)
		if err != nil || nano <= 0 {
			continue
		}
		transfers = append(transfers, Transfer{
			Hash:   item.TransactionId.Hash,
			From:   item.InMsg.Source,
			Amount: float64(nano) / 1e9,
			Memo:   item.InMsg.Message,
			Utime:  item.Utime,
		})
	}
	return transfers, nil
}
