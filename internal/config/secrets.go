// internal/config/secrets.go
//
// `vault:` reference resolution.
//
// Context
// -------
// Any string leaf in the merged Koanf tree of the form
//
//	vault:<mount>/<path>#<key>      e.g. vault:secret/sitedesk/db#password
//
// is replaced with the KV-v2 value before unmarshal.  The Vault client is
// only constructed when at least one reference exists, so local setups
// with plain passwords never need VAULT_ADDR.
//
// Notes
// -----
//   • Resolution failures abort Load; a half-resolved config is useless.
//   • Oxford commas, two spaces after periods.

package config

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/vault"
)

const vaultPrefix = "vault:"

// SecretResolver is the slice of *vault.Client the loader needs.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// newResolver is swapped out by tests.
var newResolver = func(ctx context.Context) (SecretResolver, error) {
	return vault.New(ctx, zap.S().Infof)
}

// vaultRefs returns the koanf keys whose values are vault references,
// sorted for deterministic resolution order.
func vaultRefs(k *koanf.Koanf) []string {
	var keys []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vaultPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// parseRef splits "vault:secret/app#key" into ("secret/app", "key").
func parseRef(ref string) (path, key string, err error) {
	body := strings.TrimPrefix(ref, vaultPrefix)
	i := strings.LastIndexByte(body, '#')
	if i <= 0 || i == len(body)-1 {
		return "", "", fmt.Errorf("malformed vault reference %q (want vault:path#key)", ref)
	}
	return body[:i], body[i+1:], nil
}

// resolveSecrets rewrites every vault reference in k in place.
func resolveSecrets(ctx context.Context, k *koanf.Koanf) error {
	keys := vaultRefs(k)
	if len(keys) == 0 {
		return nil
	}

	res, err := newResolver(ctx)
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}

	for _, key := range keys {
		path, field, err := parseRef(k.String(key))
		if err != nil {
			return err
		}
		val, err := res.GetKV(ctx, path, field, 5*time.Minute)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		zap.S().Debugw("config secret resolved", "key", key, "path", path)
	}
	return nil
}
