package market

import (
	"fmt"
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/registry"
	"github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
	"sync"
	"time"
)

// LicenseLedger records, per (collection, tokenId, licensee), a license term
// and answers isLicensed queries. Licenses are immutable once granted;
// repeated grants for the same triple create distinct licenses.
type LicenseLedger struct {
	registry registry.Service
	recorder Recorder
	termUnit int64
	nowFn    func() int64

	mu       sync.RWMutex
	licenses map[string][]entity.License

	initialized bool
}

func NewLicenseLedger(termUnit int64) *LicenseLedger {
	return &LicenseLedger{
		recorder: NoopRecorder{},
		termUnit: termUnit,
		nowFn:    func() int64 { return time.Now().Unix() },
		licenses: make(map[string][]entity.License),
	}
}

// Initialize binds the external ownership registry exactly once.
func (l *LicenseLedger) Initialize(registry registry.Service, recorder Recorder) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return ErrAlreadyInitialized
	}

	l.registry = registry
	if recorder != nil {
		l.recorder = recorder
	}
	l.initialized = true

	return nil
}

// SetNowFunc overrides the time source, primarily used in tests.
func (l *LicenseLedger) SetNowFunc(now func() int64) {
	if now != nil {
		l.nowFn = now
	}
}

func (l *LicenseLedger) GrantLicense(collection string, tokenId uint64, termUnits uint64, licensee string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return "", ErrNotInitialized
	}

	exists, err := l.registry.Exists(collection, tokenId)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("collection", collection)).Error("License: registry lookup failed")
		return "", err
	}
	if !exists {
		return "", ErrInvalidAsset
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	now := l.nowFn()
	license := entity.License{
		Id:         id.String(),
		Collection: collection,
		TokenId:    tokenId,
		Licensee:   licensee,
		TermStart:  now,
		TermEnd:    now + int64(termUnits)*l.termUnit,
	}

	key := licenseKey(collection, tokenId, licensee)
	l.licenses[key] = append(l.licenses[key], license)

	l.recorder.License(license)

	zap.L().With(
		zap.String("licenseId", license.Id),
		zap.String("collection", collection),
		zap.Uint64("tokenId", tokenId),
		zap.String("licensee", licensee),
		zap.Int64("termEnd", license.TermEnd),
	).Info("License granted")

	return license.Id, nil
}

func (l *LicenseLedger) IsLicensed(collection string, tokenId uint64, account string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.nowFn()
	for _, license := range l.licenses[licenseKey(collection, tokenId, account)] {
		if license.ActiveAt(now) {
			return true
		}
	}

	return false
}

func licenseKey(collection string, tokenId uint64, licensee string) string {
	return fmt.Sprintf("%s-%d-%s", collection, tokenId, licensee)
}
