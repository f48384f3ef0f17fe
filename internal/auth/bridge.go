package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// Local-store keys, carried over from the browser app's storage schema.
const (
	keyCachedIdentity = "identity_uid"
	keyDarkMode       = "dark_mode"
)

// Bridge reconciles gateway identities with record-store user rows and keeps
// an obfuscated copy of the signed-in id for reuse across restarts.
type Bridge struct {
	users  app.UserRepository
	local  app.LocalStore
	cipher *identityCipher
	now    func() time.Time
}

func NewBridge(users app.UserRepository, local app.LocalStore, secret string) (*Bridge, error) {
	c, err := newIdentityCipher(secret)
	if err != nil {
		return nil, err
	}
	return &Bridge{users: users, local: local, cipher: c, now: time.Now}, nil
}

// Sync maps a gateway identity onto a users row, creating one on first
// sign-in. Idempotent: the existence check makes repeat calls no-ops. The
// check-then-insert is the only duplicate guard; two simultaneous first
// sign-ins racing past it is an accepted gap, the store has no unique
// constraint beyond the primary key to catch it.
func (b *Bridge) Sync(ctx context.Context, identity domain.Identity) (domain.User, error) {
	user, err := b.users.GetByID(ctx, identity.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	username := identity.DisplayName
	if username == "" {
		username = emailLocalPart(identity.Email)
	}
	createdAt := identity.CreatedAt
	if createdAt.IsZero() {
		createdAt = b.now().UTC()
	}
	user = domain.User{
		ID:        identity.ID,
		Username:  username,
		Email:     identity.Email,
		CreatedAt: createdAt,
	}
	if err := b.users.Insert(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// CacheIdentity stores the obfuscated identity id locally.
func (b *Bridge) CacheIdentity(identityID string) error {
	blob, err := b.cipher.encrypt(identityID)
	if err != nil {
		return err
	}
	return b.local.Set(keyCachedIdentity, blob)
}

// ResolveCachedIdentity recovers the cached identity id. Every failure mode
// (missing key, corrupted blob, wrong secret) collapses into
// domain.ErrNoCachedIdentity; callers just re-authenticate.
func (b *Bridge) ResolveCachedIdentity() (string, error) {
	blob, ok, err := b.local.Get(keyCachedIdentity)
	if err != nil || !ok {
		return "", domain.ErrNoCachedIdentity
	}
	id, err := b.cipher.decrypt(blob)
	if err != nil {
		return "", domain.ErrNoCachedIdentity
	}
	return id, nil
}

// ClearCachedIdentity removes the cached blob, typically on sign-out.
func (b *Bridge) ClearCachedIdentity() error {
	return b.local.Delete(keyCachedIdentity)
}

// SetDarkMode persists the theme preference bit.
func (b *Bridge) SetDarkMode(on bool) error {
	if on {
		return b.local.Set(keyDarkMode, "true")
	}
	return b.local.Set(keyDarkMode, "false")
}

// DarkMode reads the theme preference; absence means off.
func (b *Bridge) DarkMode() bool {
	v, ok, err := b.local.Get(keyDarkMode)
	return err == nil && ok && v == "true"
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
