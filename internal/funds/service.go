package funds

import (
	"errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mintlane/marketplace-engine/internal/rpc"
	"math/big"
)

var ErrInvalidAmount = errors.New("funds: invalid amount")

// Service is the marketplace's view of the external funds ledger (a fungible
// token balance/allowance system). Buyers approve the marketplace before a
// buy or bid; settlement and refunds move funds through this interface.
type Service interface {
	Token() string
	BalanceOf(account string) (*big.Int, error)
	Allowance(owner, spender string) (*big.Int, error)
	TransferFrom(from, to string, amount *big.Int) error
	Transfer(to string, amount *big.Int) error
}

type service struct {
	token    string
	treasury string
	client   *rpc.Client
}

type allowanceRequest struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func NewService(url, token, treasury string, httpClient *retryablehttp.Client, timeout int, debug bool) Service {
	return service{
		token:    token,
		treasury: treasury,
		client:   rpc.NewClient("Funds", url, httpClient, timeout, debug),
	}
}

func (s service) Token() string {
	return s.token
}

func (s service) BalanceOf(account string) (*big.Int, error) {
	response, err := s.client.Call("BalanceOf", account)
	if err != nil {
		return nil, err
	}

	return resultAsBigInt(response)
}

func (s service) Allowance(owner, spender string) (*big.Int, error) {
	response, err := s.client.Call("Allowance", allowanceRequest{owner, spender})
	if err != nil {
		return nil, err
	}

	return resultAsBigInt(response)
}

func (s service) TransferFrom(from, to string, amount *big.Int) error {
	_, err := s.client.Call("TransferFrom", transferRequest{from, to, amount.String()})
	return err
}

func (s service) Transfer(to string, amount *big.Int) error {
	_, err := s.client.Call("Transfer", transferRequest{s.treasury, to, amount.String()})
	return err
}

func resultAsBigInt(response *rpc.Response) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(response.ResultAsString(), 10)
	if !ok {
		return nil, ErrInvalidAmount
	}

	return amount, nil
}
