package registry

import (
	"encoding/json"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mintlane/marketplace-engine/internal/rpc"
	"github.com/patrickmn/go-cache"
	"time"
)

// Service is the marketplace's view of the external ownership registry. It
// answers ownership and approval queries for listed tokens and performs the
// custodial transfers on settlement and cancellation.
type Service interface {
	OwnerOf(contract string, tokenId uint64) (string, error)
	CreatorOf(contract string, tokenId uint64) (string, error)
	Exists(contract string, tokenId uint64) (bool, error)
	IsApproved(contract string, tokenId uint64, operator string) (bool, error)
	Transfer(contract string, tokenId, quantity uint64, from, to string) error
	Mint(contract, to string, quantity uint64, uri string) (uint64, error)
}

type service struct {
	client *rpc.Client
	cache  *cache.Cache
}

type tokenRef struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
}

type mintRequest struct {
	Contract string `json:"contract"`
	To       string `json:"to"`
	Quantity uint64 `json:"quantity"`
	Uri      string `json:"uri"`
}

type transferRequest struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Quantity uint64 `json:"quantity"`
	From     string `json:"from"`
	To       string `json:"to"`
}

func NewService(url string, httpClient *retryablehttp.Client, timeout int, debug bool) Service {
	return service{
		client: rpc.NewClient("Registry", url, httpClient, timeout, debug),
		cache:  cache.New(30*time.Second, time.Minute),
	}
}

func (s service) OwnerOf(contract string, tokenId uint64) (string, error) {
	cacheKey := fmt.Sprintf("ownerOf-%s-%d", contract, tokenId)
	if owner, exists := s.cache.Get(cacheKey); exists {
		return owner.(string), nil
	}

	response, err := s.client.Call("OwnerOf", tokenRef{contract, tokenId})
	if err != nil {
		return "", err
	}

	owner := response.ResultAsString()
	s.cache.Set(cacheKey, owner, cache.DefaultExpiration)

	return owner, nil
}

func (s service) CreatorOf(contract string, tokenId uint64) (string, error) {
	response, err := s.client.Call("CreatorOf", tokenRef{contract, tokenId})
	if err != nil {
		return "", err
	}

	return response.ResultAsString(), nil
}

func (s service) Exists(contract string, tokenId uint64) (bool, error) {
	response, err := s.client.Call("Exists", tokenRef{contract, tokenId})
	if err != nil {
		return false, err
	}

	return response.ResultAsBool()
}

func (s service) IsApproved(contract string, tokenId uint64, operator string) (bool, error) {
	response, err := s.client.Call("IsApprovedForAll", tokenRef{contract, tokenId}, operator)
	if err != nil {
		return false, err
	}

	return response.ResultAsBool()
}

func (s service) Mint(contract, to string, quantity uint64, uri string) (uint64, error) {
	response, err := s.client.Call("Mint", mintRequest{contract, to, quantity, uri})
	if err != nil {
		return 0, err
	}

	var tokenId uint64
	if err := json.Unmarshal(response.Result, &tokenId); err != nil {
		return 0, err
	}

	return tokenId, nil
}

func (s service) Transfer(contract string, tokenId, quantity uint64, from, to string) error {
	_, err := s.client.Call("TransferFrom", transferRequest{contract, tokenId, quantity, from, to})
	if err != nil {
		return err
	}

	s.cache.Delete(fmt.Sprintf("ownerOf-%s-%d", contract, tokenId))

	return nil
}
