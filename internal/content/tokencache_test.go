package content

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredential struct {
	calls  atomic.Int32
	ttl    time.Duration
	now    func() time.Time
	err    error
	scopes []string
	mu     sync.Mutex
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	n := f.calls.Add(1)
	f.mu.Lock()
	f.scopes = opts.Scopes
	f.mu.Unlock()
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	return azcore.AccessToken{Token: "tok-" + string(rune('0'+n)), ExpiresOn: f.now().Add(f.ttl)}, nil
}

func TestTokenCacheReusesFreshToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cred := &fakeCredential{ttl: time.Hour, now: clock}
	cache := NewTokenCache(cred, "")
	cache.now = clock

	tok, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, []string{AzureDevOpsScope}, cred.scopes)

	now = now.Add(58 * time.Minute)
	tok, err = cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, int32(1), cred.calls.Load())

	// Inside the 60s refresh window.
	now = now.Add(time.Minute + time.Second)
	tok, err = cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestTokenCacheError(t *testing.T) {
	cred := &fakeCredential{err: errors.New("invalid client secret"), now: time.Now}
	_, err := NewTokenCache(cred, "scope/.default").Token(context.Background())
	assert.ErrorContains(t, err, "acquire access token")
}

func TestTokenCacheConcurrentAccess(t *testing.T) {
	cred := &fakeCredential{ttl: time.Hour, now: time.Now}
	cache := NewTokenCache(cred, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := cache.Token(context.Background())
			assert.NoError(t, err)
			assert.NotEmpty(t, tok)
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, cred.calls.Load(), int32(1))
}

func TestNewClientSecretTokenCacheRequiresSettings(t *testing.T) {
	_, err := NewClientSecretTokenCache("", "client", "secret", "")
	assert.Error(t, err)
}
