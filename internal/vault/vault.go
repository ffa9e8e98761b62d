// internal/vault/vault.go
//
// Vault client wrapper for Sitedesk.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK for the one job Sitedesk needs:
//     reading KV-v2 secrets referenced from config (`vault:path#key`).
//   - Caches each path#key for a caller-chosen TTL so repeated config
//     loads do not hammer Vault.
//   - Keeps the token alive with the SDK's LifetimeWatcher when the token
//     is renewable.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.S().Infof)   // during config load.
//  2. pw,  err := cli.GetKV(ctx, path, key, ttl)
//
// Environment: VAULT_ADDR, VAULT_TOKEN (or ~/.vault-token), plus the other
// variables understood by vault.DefaultConfig().ReadEnvironment().
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Client
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	mu    sync.RWMutex
	cache map[string]cached // path#key → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New builds a client from the environment and starts token renewal tied
// to ctx.
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}

	c := &Client{api: api, logFn: logFn, cache: make(map[string]cached)}
	go c.keepAlive(ctx)
	return c, nil
}

// GetKV reads key from the KV-v2 secret at secretPath ("mount/rel/path").
// ttl > 0 caches the value for that long.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}
	ck := secretPath + "#" + key

	if ttl > 0 {
		c.mu.RLock()
		hit, ok := c.cache[ck]
		c.mu.RUnlock()
		if ok && time.Now().Before(hit.exp) {
			return hit.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", ck)
	}

	if ttl > 0 {
		c.mu.Lock()
		c.cache[ck] = cached{val: val, exp: time.Now().Add(ttl)}
		c.mu.Unlock()
	}
	return val, nil
}

//
// SECTION 2.  Token renewal
//

// keepAlive renews the current token until ctx ends.  Non-renewable
// tokens (root, batch) are left alone.
func (c *Client) keepAlive(ctx context.Context) {
	self, err := c.api.Auth().Token().LookupSelfWithContext(ctx)
	if err != nil {
		c.logFn("vault: token lookup failed: %v", err)
		return
	}
	renewable, _ := self.TokenIsRenewable()
	if !renewable {
		return
	}

	for {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.logFn("vault: token renew failed: %v", err)
			if !sleep(ctx, 30*time.Second) {
				return
			}
			continue
		}

		w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
		if err != nil {
			c.logFn("vault: watcher init failed: %v", err)
			if !sleep(ctx, 30*time.Second) {
				return
			}
			continue
		}
		go w.Start()

		select {
		case <-ctx.Done():
			w.Stop()
			return
		case err := <-w.DoneCh():
			w.Stop()
			if err != nil {
				c.logFn("vault: token renewal stopped: %v", err)
			}
		}
		if !sleep(ctx, 15*time.Second) {
			return
		}
	}
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

// sleep waits d or until ctx ends; false means ctx ended.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
