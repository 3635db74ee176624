package market

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/mintlane/marketplace-engine/internal/entity"
)

const (
	marketAccount = "0xmarket"
	sellerAccount = "0xseller"
	buyerAccount  = "0xbuyer"
	tokenContract = "0xnftcontract"
)

type fakeRegistry struct {
	mu        sync.Mutex
	owners    map[string]string
	creators  map[string]string
	approvals map[string]bool
	nextToken uint64

	transferErr error
	transfers   int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		owners:    make(map[string]string),
		creators:  make(map[string]string),
		approvals: make(map[string]bool),
		nextToken: 1,
	}
}

func tokenKey(contract string, tokenId uint64) string {
	return fmt.Sprintf("%s-%d", contract, tokenId)
}

func (r *fakeRegistry) addToken(contract string, tokenId uint64, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[tokenKey(contract, tokenId)] = owner
	r.creators[tokenKey(contract, tokenId)] = owner
	r.approvals[tokenKey(contract, tokenId)] = true
}

func (r *fakeRegistry) OwnerOf(contract string, tokenId uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[tokenKey(contract, tokenId)]
	if !ok {
		return "", errors.New("no such token")
	}
	return owner, nil
}

func (r *fakeRegistry) CreatorOf(contract string, tokenId uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creators[tokenKey(contract, tokenId)], nil
}

func (r *fakeRegistry) Exists(contract string, tokenId uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.owners[tokenKey(contract, tokenId)]
	return ok, nil
}

func (r *fakeRegistry) IsApproved(contract string, tokenId uint64, operator string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.approvals[tokenKey(contract, tokenId)], nil
}

func (r *fakeRegistry) Transfer(contract string, tokenId, quantity uint64, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transferErr != nil {
		return r.transferErr
	}
	r.owners[tokenKey(contract, tokenId)] = to
	r.transfers++
	return nil
}

func (r *fakeRegistry) Mint(contract, to string, quantity uint64, uri string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokenId := r.nextToken
	r.nextToken++
	r.owners[tokenKey(contract, tokenId)] = to
	r.creators[tokenKey(contract, tokenId)] = to
	r.approvals[tokenKey(contract, tokenId)] = true
	return tokenId, nil
}

// fakeFunds keeps real balances so tests can assert value conservation.
// Allowances are tracked per owner against the marketplace operator, and
// Transfer pays out of the operator's balance like the real treasury does.
type fakeFunds struct {
	mu         sync.Mutex
	operator   string
	balances   map[string]*big.Int
	allowances map[string]*big.Int

	transferErr     error
	transferFromErr error
	refundBlock     string
}

func newFakeFunds(operator string) *fakeFunds {
	return &fakeFunds{
		operator:   operator,
		balances:   map[string]*big.Int{operator: big.NewInt(0)},
		allowances: make(map[string]*big.Int),
	}
}

func (f *fakeFunds) fund(account string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[account] = big.NewInt(amount)
	f.allowances[account] = big.NewInt(amount)
}

func (f *fakeFunds) approve(account string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allowances[account] = big.NewInt(amount)
}

func (f *fakeFunds) balance(account string) *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (f *fakeFunds) Token() string {
	return "WETH"
}

func (f *fakeFunds) BalanceOf(account string) (*big.Int, error) {
	return f.balance(account), nil
}

func (f *fakeFunds) Allowance(owner, spender string) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.allowances[owner]; ok {
		return new(big.Int).Set(a), nil
	}
	return new(big.Int), nil
}

func (f *fakeFunds) TransferFrom(from, to string, amount *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transferFromErr != nil {
		return f.transferFromErr
	}
	balance, ok := f.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	allowance, ok := f.allowances[from]
	if !ok || allowance.Cmp(amount) < 0 {
		return errors.New("insufficient allowance")
	}
	balance.Sub(balance, amount)
	allowance.Sub(allowance, amount)
	f.credit(to, amount)
	return nil
}

func (f *fakeFunds) Transfer(to string, amount *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transferErr != nil {
		return f.transferErr
	}
	if to == f.refundBlock {
		return errors.New("refund rejected")
	}
	balance := f.balances[f.operator]
	if balance.Cmp(amount) < 0 {
		return errors.New("treasury underfunded")
	}
	balance.Sub(balance, amount)
	f.credit(to, amount)
	return nil
}

func (f *fakeFunds) credit(account string, amount *big.Int) {
	if balance, ok := f.balances[account]; ok {
		balance.Add(balance, amount)
		return
	}
	f.balances[account] = new(big.Int).Set(amount)
}

type captureRecorder struct {
	mu       sync.Mutex
	listings []entity.Listing
	actions  []entity.MarketAction
	licenses []entity.License
	receipts []entity.SettlementReceipt
}

func (r *captureRecorder) Listing(listing entity.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings = append(r.listings, listing)
}

func (r *captureRecorder) Action(action entity.MarketAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *captureRecorder) License(license entity.License) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.licenses = append(r.licenses, license)
}

func (r *captureRecorder) Receipt(receipt entity.SettlementReceipt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, receipt)
}

func (r *captureRecorder) actionTypes() []entity.ActionType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]entity.ActionType, 0, len(r.actions))
	for _, action := range r.actions {
		types = append(types, action.Action)
	}
	return types
}

// fixture wires a store, engine and distributor over the fakes with a
// controllable clock.
type fixture struct {
	registry *fakeRegistry
	funds    *fakeFunds
	roles    *Roles
	store    *Store
	engine   *Engine
	recorder *captureRecorder

	mu  sync.Mutex
	now int64
}

func newFixture() *fixture {
	f := &fixture{
		registry: newFakeRegistry(),
		funds:    newFakeFunds(marketAccount),
		roles:    NewRoles(),
		recorder: &captureRecorder{},
		now:      1000,
	}

	f.store = NewStore(f.registry, f.roles, f.recorder, marketAccount)
	f.store.SetNowFunc(f.clock)

	distributor := NewDistributor(f.registry, f.funds, f.recorder)
	f.engine = NewEngine(f.store, f.funds, f.roles, distributor, f.recorder, marketAccount)
	f.engine.SetNowFunc(f.clock)

	return f
}

func (f *fixture) clock() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setNow(now int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *fixture) advance(seconds int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += seconds
}

func (f *fixture) asset(tokenId uint64, price int64) entity.Asset {
	f.registry.addToken(tokenContract, tokenId, sellerAccount)

	return entity.Asset{
		AssetType:    entity.SingleEditionAsset,
		Seller:       sellerAccount,
		Creator:      sellerAccount,
		TokenAddress: tokenContract,
		TokenId:      tokenId,
		Quantity:     1,
		Price:        big.NewInt(price),
	}
}

func (f *fixture) listFixed(tokenId uint64, price int64) uint64 {
	listingId, err := f.store.AddAssetForFixedSale(f.asset(tokenId, price), false, "")
	if err != nil {
		panic(err)
	}
	return listingId
}

func (f *fixture) listEnglish(tokenId uint64, floor, reserve int64, duration int64) uint64 {
	listingId, err := f.store.AddAssetForEnglishAuction(f.asset(tokenId, floor), big.NewInt(reserve), duration, true, "")
	if err != nil {
		panic(err)
	}
	return listingId
}
