// Package drebedengi is a typed client for the Drebedengi personal
// finance SOAP API (https://www.drebedengi.ru). It renames the r_*
// wire parameters into friendlier terms and converts the PHP-SOAP
// key/value responses into typed records.
package drebedengi

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mishamsk/drebedengi-go/pkg/soap"
)

const (
	// DefaultEndpoint is the production SOAP endpoint.
	DefaultEndpoint = "https://www.drebedengi.ru/soap/"

	serviceNS      = "urn:dd"
	defaultTimeout = 5 * time.Minute
)

const (
	methodRecordList      = "getRecordList"
	methodChangeList      = "getChangeList"
	methodCategoryList    = "getCategoryList"
	methodSourceList      = "getSourceList"
	methodTagList         = "getTagList"
	methodCurrencyList    = "getCurrencyList"
	methodPlaceList       = "getPlaceList"
	methodCurrentRevision = "getCurrentRevision"
)

// Config holds the client credentials and transport settings. The api
// key is issued by drebedengi support per application.
type Config struct {
	APIKey   string        `env:"API_KEY, required"`
	Login    string        `env:"LOGIN, required"`
	Password string        `env:"PASSWORD, required"`
	Endpoint string        `env:"ENDPOINT, default=https://www.drebedengi.ru/soap/"`
	Timeout  time.Duration `env:"TIMEOUT, default=5m"`
	// Strict makes calls fail when a response record lacks a required
	// field instead of zero-filling it.
	Strict bool `env:"STRICT, default=true"`
}

// Client wraps the remote SOAP operations with typed methods. Calls are
// synchronous, one HTTP request each; the server raises faults for bad
// credentials and malformed parameters and those surface as errors
// unchanged.
type Client struct {
	cfg  Config
	soap *soap.Client
	log  *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	log.Debug(
		"initialized drebedengi client",
		zap.String("login", cfg.Login),
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("strict", cfg.Strict),
	)

	return &Client{
		cfg:  cfg,
		soap: soap.NewClient(cfg.Endpoint, serviceNS, cfg.Timeout, log),
		log:  log,
	}
}

// callPayload is the body of every operation: the credential triple
// followed by the operation-specific parameters.
type callPayload struct {
	XMLName  xml.Name
	APIKey   soap.String   `xml:"apiId"`
	Login    soap.String   `xml:"login"`
	Password soap.String   `xml:"pass"`
	Revision *soap.Int     `xml:"revision,omitempty"`
	IDList   soap.IntArray `xml:"idList,omitempty"`
	Params   soap.Map      `xml:"params,omitempty"`
}

func (c *Client) payload(method string) callPayload {
	return callPayload{
		XMLName:  xml.Name{Local: "ns1:" + method},
		APIKey:   soap.String(c.cfg.APIKey),
		Login:    soap.String(c.cfg.Login),
		Password: soap.String(c.cfg.Password),
	}
}

// GetTransactions implements getRecordList. The zero request returns
// the last 20 records of any type.
func (c *Client) GetTransactions(ctx context.Context, req TransactionsRequest) ([]Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Aggregated {
		return nil, ErrAggregatedNotSupported
	}

	c.log.Debug(
		"getting transactions",
		zap.Stringer("include_types", orAny(req.IncludeTypes)),
		zap.Int("period", int(req.Period)),
		zap.Int64s("ids", req.IDs),
	)

	payload := c.payload(methodRecordList)
	payload.IDList = req.IDs
	payload.Params = req.params(time.Now())

	respBody, err := c.soap.Call(ctx, methodRecordList, payload)
	if err != nil {
		return nil, err
	}

	ret, err := soap.ParseReturn(respBody, methodRecordList+"Return")
	if err != nil {
		return nil, err
	}

	// record list items are indexed map entries, the record map is one
	// level down in the value
	out := make([]Transaction, 0, len(ret.Items))
	for i := range ret.Items {
		item := &ret.Items[i]
		if item.Value == nil {
			continue
		}
		tr, err := decodeTransaction(item.Value.Values(), c.cfg.Strict)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", methodRecordList, err)
		}
		out = append(out, tr)
	}
	return out, nil
}

// GetChanges implements getChangeList. It returns every change the
// server recorded after the given revision, usually saved client-side
// from the last successful sync.
func (c *Client) GetChanges(ctx context.Context, revision int64) ([]ChangeRecord, error) {
	c.log.Debug("getting changes", zap.Int64("revision", revision))

	payload := c.payload(methodChangeList)
	rev := soap.Int(revision)
	payload.Revision = &rev

	return listCall(ctx, c, methodChangeList, payload, decodeChangeRecord)
}

// GetExpenseCategories implements getCategoryList. A nil ids slice
// fetches the full list.
func (c *Client) GetExpenseCategories(ctx context.Context, ids []int64) ([]ExpenseCategory, error) {
	c.log.Debug("getting expense categories", zap.Int64s("ids", ids))

	payload := c.payload(methodCategoryList)
	payload.IDList = ids

	return listCall(ctx, c, methodCategoryList, payload, decodeExpenseCategory)
}

// GetIncomeSources implements getSourceList. A nil ids slice fetches
// the full list.
func (c *Client) GetIncomeSources(ctx context.Context, ids []int64) ([]IncomeSource, error) {
	c.log.Debug("getting income sources", zap.Int64s("ids", ids))

	payload := c.payload(methodSourceList)
	payload.IDList = ids

	return listCall(ctx, c, methodSourceList, payload, decodeIncomeSource)
}

// GetTags implements getTagList. A nil ids slice fetches the full list.
func (c *Client) GetTags(ctx context.Context, ids []int64) ([]Tag, error) {
	c.log.Debug("getting tags", zap.Int64s("ids", ids))

	payload := c.payload(methodTagList)
	payload.IDList = ids

	return listCall(ctx, c, methodTagList, payload, decodeTag)
}

// GetCurrencies implements getCurrencyList. A nil ids slice fetches the
// full list.
func (c *Client) GetCurrencies(ctx context.Context, ids []int64) ([]Currency, error) {
	c.log.Debug("getting currencies", zap.Int64s("ids", ids))

	payload := c.payload(methodCurrencyList)
	payload.IDList = ids

	return listCall(ctx, c, methodCurrencyList, payload, decodeCurrency)
}

// GetAccounts implements getPlaceList. A nil ids slice fetches the full
// list. The server returns an empty list for users with limited access.
func (c *Client) GetAccounts(ctx context.Context, ids []int64) ([]Account, error) {
	c.log.Debug("getting accounts", zap.Int64s("ids", ids))

	payload := c.payload(methodPlaceList)
	payload.IDList = ids

	return listCall(ctx, c, methodPlaceList, payload, decodeAccount)
}

// GetCurrentRevision implements getCurrentRevision.
func (c *Client) GetCurrentRevision(ctx context.Context) (int64, error) {
	c.log.Debug("getting current server revision")

	respBody, err := c.soap.Call(ctx, methodCurrentRevision, c.payload(methodCurrentRevision))
	if err != nil {
		return 0, err
	}

	ret, err := soap.ParseReturn(respBody, methodCurrentRevision+"Return")
	if err != nil {
		return 0, err
	}

	revision, err := strconv.ParseInt(strings.TrimSpace(ret.Text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: parse revision: %w", methodCurrentRevision, err)
	}
	return revision, nil
}

// listCall runs one list-returning operation and decodes every item of
// the *Return element with the given decoder.
func listCall[T any](
	ctx context.Context,
	c *Client,
	method string,
	payload callPayload,
	decode func(vals soap.Values, strict bool) (T, error),
) ([]T, error) {
	respBody, err := c.soap.Call(ctx, method, payload)
	if err != nil {
		return nil, err
	}

	ret, err := soap.ParseReturn(respBody, method+"Return")
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(ret.Items))
	for i := range ret.Items {
		rec, err := decode(ret.Items[i].Values(), c.cfg.Strict)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func orAny(t TransactionType) TransactionType {
	if t == 0 {
		return TransactionAny
	}
	return t
}
