package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// AzureDevOpsScope is the resource scope for Azure DevOps REST calls.
const AzureDevOpsScope = "499b84ac-1321-427f-aa17-267ca6975798/.default"

// refreshSkew is how long before expiry a cached token is refreshed.
const refreshSkew = 60 * time.Second

// TokenSource supplies bearer tokens for authenticated fetches.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenCache caches an access token from an azcore.TokenCredential and
// refreshes it when within refreshSkew of expiry. Concurrent callers that
// observe a stale token may each refresh; the last write wins.
type TokenCache struct {
	cred   azcore.TokenCredential
	scopes []string
	now    func() time.Time

	mu        sync.RWMutex
	token     string
	expiresOn time.Time
}

// NewTokenCache wraps cred. An empty scope uses AzureDevOpsScope.
func NewTokenCache(cred azcore.TokenCredential, scope string) *TokenCache {
	if scope == "" {
		scope = AzureDevOpsScope
	}
	return &TokenCache{cred: cred, scopes: []string{scope}, now: time.Now}
}

// NewClientSecretTokenCache builds a cache over an Entra ID client secret credential.
func NewClientSecretTokenCache(tenantID, clientID, clientSecret, scope string) (*TokenCache, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, errors.New("tenant id, client id, and client secret are required")
	}
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("create client secret credential: %w", err)
	}
	return NewTokenCache(cred, scope), nil
}

// Token returns a cached token, refreshing it if it expires within refreshSkew.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	tok, exp := c.token, c.expiresOn
	c.mu.RUnlock()

	if tok != "" && c.now().Before(exp.Add(-refreshSkew)) {
		return tok, nil
	}

	at, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: c.scopes})
	if err != nil {
		return "", fmt.Errorf("acquire access token: %w", err)
	}

	c.mu.Lock()
	c.token, c.expiresOn = at.Token, at.ExpiresOn
	c.mu.Unlock()
	return at.Token, nil
}
