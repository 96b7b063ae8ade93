package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleet-sync/core/snipeit"
	"fleet-sync/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrRunAborted marks failures that must stop the whole run rather than a single device.
var ErrRunAborted = errors.New("run aborted")

// passwordLength is the length of generated passwords for created users.
const passwordLength = 25

// Identity is the owner data used to find or create a target user.
type Identity struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

// UserResolver maps an owner email to a target user id. Lookups are never
// cached so that every device sees live state; concurrent resolutions of the
// same email share one find-or-create.
type UserResolver struct {
	target   Target
	logger   *zap.Logger
	inflight singleflight.Group
}

// NewUserResolver creates a user resolver.
func NewUserResolver(target Target, logger *zap.Logger) *UserResolver {
	return &UserResolver{target: target, logger: logger}
}

// Resolve returns the id of the user with the identity's email, or 0 when the
// email is invalid or the user is unknown and createIfMissing is false.
// A failed creation wraps ErrRunAborted.
func (r *UserResolver) Resolve(ctx context.Context, id Identity, createIfMissing bool) (int, error) {
	email := strings.TrimSpace(id.Email)
	if !strings.Contains(email, "@") {
		r.logger.Error("Owner is not an email address, treating device as unassigned", zap.String("email", id.Email))
		return 0, nil
	}

	key := strings.ToLower(email)
	if createIfMissing {
		key += "\x00create"
	}
	v, err, _ := r.inflight.Do(key, func() (any, error) {
		return r.findOrCreate(ctx, id, email, createIfMissing)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (r *UserResolver) findOrCreate(ctx context.Context, id Identity, email string, createIfMissing bool) (int, error) {
	u, found, err := r.target.FindUserByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if found {
		r.logger.Debug("Matched user", zap.String("email", email), zap.Int("user_id", u.ID))
		return u.ID, nil
	}

	if !createIfMissing {
		r.logger.Warn("User not found and user creation is disabled", zap.String("email", email))
		return 0, nil
	}

	password, err := utils.RandomPassword(passwordLength)
	if err != nil {
		return 0, fmt.Errorf("%w: generate password for %s: %w", ErrRunAborted, email, err)
	}

	created, err := r.target.CreateUser(ctx, snipeit.UserRequest{
		FirstName:            id.FirstName,
		LastName:             id.LastName,
		Username:             id.Username,
		Password:             password,
		PasswordConfirmation: password,
		Email:                email,
		Activated:            true,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: create user %s: %w", ErrRunAborted, email, err)
	}

	r.logger.Info("Created user", zap.String("email", email), zap.Int("user_id", created.ID))
	return created.ID, nil
}
