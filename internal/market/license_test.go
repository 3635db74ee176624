package market

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const termUnit = int64(2592000) // thirty days

type licenseFixture struct {
	registry *fakeRegistry
	ledger   *LicenseLedger
	recorder *captureRecorder

	mu  sync.Mutex
	now int64
}

func newLicenseFixture(t *testing.T) *licenseFixture {
	f := &licenseFixture{
		registry: newFakeRegistry(),
		ledger:   NewLicenseLedger(termUnit),
		recorder: &captureRecorder{},
		now:      1000,
	}
	require.NoError(t, f.ledger.Initialize(f.registry, f.recorder))
	f.ledger.SetNowFunc(func() int64 {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	})

	f.registry.addToken(tokenContract, 1, sellerAccount)

	return f
}

func (f *licenseFixture) setNow(now int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func TestLicense_GrantAndQuery(t *testing.T) {
	f := newLicenseFixture(t)

	licenseId, err := f.ledger.GrantLicense(tokenContract, 1, 1, buyerAccount)
	require.NoError(t, err)
	assert.NotEmpty(t, licenseId)

	assert.True(t, f.ledger.IsLicensed(tokenContract, 1, buyerAccount))
	assert.False(t, f.ledger.IsLicensed(tokenContract, 1, "0xstranger"))
	assert.False(t, f.ledger.IsLicensed(tokenContract, 2, buyerAccount))

	require.Len(t, f.recorder.licenses, 1)
	license := f.recorder.licenses[0]
	assert.Equal(t, int64(1000), license.TermStart)
	assert.Equal(t, int64(1000)+termUnit, license.TermEnd)
}

func TestLicense_TermWindow(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.ledger.GrantLicense(tokenContract, 1, 2, buyerAccount)
	require.NoError(t, err)

	termEnd := int64(1000) + 2*termUnit

	// The bounds are inclusive on both ends.
	f.setNow(1000)
	assert.True(t, f.ledger.IsLicensed(tokenContract, 1, buyerAccount))

	f.setNow(termEnd)
	assert.True(t, f.ledger.IsLicensed(tokenContract, 1, buyerAccount))

	f.setNow(termEnd + 1)
	assert.False(t, f.ledger.IsLicensed(tokenContract, 1, buyerAccount))
}

func TestLicense_RepeatedGrantsAreDistinct(t *testing.T) {
	f := newLicenseFixture(t)

	first, err := f.ledger.GrantLicense(tokenContract, 1, 1, buyerAccount)
	require.NoError(t, err)

	f.setNow(1000 + termUnit + 500)
	assert.False(t, f.ledger.IsLicensed(tokenContract, 1, buyerAccount))

	second, err := f.ledger.GrantLicense(tokenContract, 1, 1, buyerAccount)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.True(t, f.ledger.IsLicensed(tokenContract, 1, buyerAccount))
	assert.Len(t, f.recorder.licenses, 2)
}

func TestLicense_UnknownAsset(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.ledger.GrantLicense(tokenContract, 99, 1, buyerAccount)
	assert.Equal(t, ErrInvalidAsset, err)
}

func TestLicense_RequiresInitialize(t *testing.T) {
	ledger := NewLicenseLedger(termUnit)

	_, err := ledger.GrantLicense(tokenContract, 1, 1, buyerAccount)
	assert.Equal(t, ErrNotInitialized, err)
}

func TestLicense_InitializeOnce(t *testing.T) {
	f := newLicenseFixture(t)

	assert.Equal(t, ErrAlreadyInitialized, f.ledger.Initialize(f.registry, f.recorder))
}
