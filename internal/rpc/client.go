package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"io/ioutil"
	"net/http"
	"time"
)

const (
	jsonrpcVersion = "2.0"
)

// Client is a JSON RPC client (over HTTP(s)) shared by the ownership
// registry and funds ledger collaborators.
type Client struct {
	name       string
	url        string
	httpClient *retryablehttp.Client
	timeout    int
	debug      bool
}

type request struct {
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Id      int64       `json:"id"`
	JsonRpc string      `json:"jsonrpc"`
}

type ErrorCode int

type Error struct {
	Code    ErrorCode `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

var _, _ error = Error{}, (*Error)(nil)

func (e Error) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

type Response struct {
	Id     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

func (r Response) ResultAsJson() ([]byte, error) {
	return json.Marshal(r.Result)
}

func (r Response) ResultAsString() string {
	var result string
	if err := json.Unmarshal(r.Result, &result); err != nil {
		return string(r.Result)
	}
	return result
}

func (r Response) ResultAsBool() (bool, error) {
	var result bool
	err := json.Unmarshal(r.Result, &result)
	return result, err
}

func NewClient(name, url string, httpClient *retryablehttp.Client, timeout int, debug bool) *Client {
	return &Client{name: name, url: url, httpClient: httpClient, timeout: timeout, debug: debug}
}

func (c *Client) Call(method string, params ...interface{}) (*Response, error) {
	req := request{Method: method, Params: params, Id: time.Now().UnixNano(), JsonRpc: jsonrpcVersion}

	payloadBuffer := &bytes.Buffer{}
	jsonEncoder := json.NewEncoder(payloadBuffer)
	if err := jsonEncoder.Encode(req); err != nil {
		return nil, err
	}

	if c.debug {
		zap.L().With(zap.String("request", payloadBuffer.String())).Debug(c.name + ": RPC Request")
	}

	httpReq, err := retryablehttp.NewRequest("POST", c.url, payloadBuffer)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Add("Content-Type", "application/json;charset=utf-8")
	httpReq.Header.Add("Accept", "application/json")

	resp, err := c.doTimeoutRequest(time.NewTimer(time.Duration(c.timeout)*time.Second), httpReq)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn(c.name + ": RPC Failure")
		return nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		zap.L().With(zap.String("response", string(data))).Debug(c.name + ": RPC Response")
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, *response.Error
	}

	return &response, nil
}

func (c *Client) doTimeoutRequest(timer *time.Timer, req *retryablehttp.Request) (*http.Response, error) {
	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := c.httpClient.Do(req)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-timer.C:
		return nil, errors.New(c.name + " rpc timeout")
	}
}
