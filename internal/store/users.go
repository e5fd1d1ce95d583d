package store

import (
	"context"
	"errors"
	"strings"

	"threadcraft-api/internal/domain/users"
	apperr "threadcraft-api/internal/errors"

	"gorm.io/gorm"
)

// UpsertResult says which branch of the upsert ran. Created and Linked are
// the two cases that warrant a welcome email.
type UpsertResult struct {
	User    users.User
	Created bool
	Linked  bool
}

// Welcome reports whether the user just came into existence for this identity.
func (r UpsertResult) Welcome() bool {
	return r.Created || r.Linked
}

// UpsertUser creates or reconciles the row for an identity-provider account:
//   - a row with this external id is refreshed;
//   - a row with this email and no external id is linked to it;
//   - a row with this email bound to another external id is a conflict and nothing changes;
//   - otherwise a new user is created with the default balance.
func (s *Store) UpsertUser(ctx context.Context, externalID, email, name string) (UpsertResult, error) {
	const op = "users.upsert"
	externalID = strings.TrimSpace(externalID)
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if externalID == "" {
		return UpsertResult{}, apperr.Validation(op, "external id is required")
	}
	if email == "" {
		return UpsertResult{}, apperr.Validation(op, "email is required")
	}

	var result UpsertResult
	err := s.Transaction(ctx, func(tx *Store) error {
		var byExternal users.User
		err := tx.db.Where("external_id = ?", externalID).Take(&byExternal).Error
		switch {
		case err == nil:
			return tx.refreshUser(op, &byExternal, email, name, &result)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperr.Persistence(op, err)
		}

		var byEmail users.User
		err = tx.db.Where("email = ?", email).Take(&byEmail).Error
		switch {
		case err == nil:
			if byEmail.HasExternalID() {
				return apperr.Conflict(op, "email %s is already bound to another account", email)
			}
			if err := tx.db.Model(&byEmail).Updates(map[string]any{
				"external_id": externalID,
				"name":        name,
			}).Error; err != nil {
				return apperr.Persistence(op, err)
			}
			byEmail.ExternalID = &externalID
			byEmail.Name = name
			result = UpsertResult{User: byEmail, Linked: true}
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperr.Persistence(op, err)
		}

		u := users.User{
			ExternalID: &externalID,
			Email:      email,
			Name:       name,
			Points:     users.DefaultPoints,
		}
		if err := tx.db.Create(&u).Error; err != nil {
			return apperr.Persistence(op, err)
		}
		result = UpsertResult{User: u, Created: true}
		return nil
	})
	if err != nil {
		return UpsertResult{}, wrap(op, err)
	}
	return result, nil
}

// refreshUser updates name and email of an already bound row. Unchanged input writes nothing.
func (s *Store) refreshUser(op string, u *users.User, email, name string, result *UpsertResult) error {
	updates := map[string]any{}
	if u.Email != email {
		var taken int64
		if err := s.db.Model(&users.User{}).Where("email = ? AND id <> ?", email, u.ID).Count(&taken).Error; err != nil {
			return apperr.Persistence(op, err)
		}
		if taken > 0 {
			return apperr.Conflict(op, "email %s belongs to another user", email)
		}
		updates["email"] = email
	}
	if u.Name != name {
		updates["name"] = name
	}
	if len(updates) > 0 {
		if err := s.db.Model(u).Updates(updates).Error; err != nil {
			return apperr.Persistence(op, err)
		}
		u.Email = email
		u.Name = name
	}
	*result = UpsertResult{User: *u}
	return nil
}

func (s *Store) UserByExternalID(ctx context.Context, externalID string) (*users.User, error) {
	var u users.User
	if err := s.conn(ctx).Where("external_id = ?", externalID).Take(&u).Error; err != nil {
		return nil, wrapNotFound("users.get", err, "user %s", externalID)
	}
	return &u, nil
}

// ListUsers returns users newest first.
func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]users.User, error) {
	var out []users.User
	if err := s.conn(ctx).Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, apperr.Persistence("users.list", err)
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
