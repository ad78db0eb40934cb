// Package authz answers permission questions by joining the user, role and
// permission tables. Every check costs one query; there is no cache, so
// grants and revocations take effect on the next request.
package authz

import (
	"context"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

// Checker is the read side consumed by handlers and services.
type Checker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	CanTable(ctx context.Context, userID int64, table string, action domain.TableAction) (bool, error)
	CanPanel(ctx context.Context, userID int64, action domain.PanelAction) (bool, error)
	CanField(ctx context.Context, userID int64, side domain.Side, field string) (bool, error)
}

// Service implements Checker over a PermissionRepository.
//
// The admin role bypass is applied here and nowhere else: panel and field
// checks short-circuit to allow for admins, table checks never do. Table
// rights are explicit rows for everyone, admins included.
type Service struct {
	db    repository.DBTX
	perms repository.PermissionRepository
}

// NewService creates an authorization service.
func NewService(db repository.DBTX, perms repository.PermissionRepository) *Service {
	return &Service{db: db, perms: perms}
}

// IsAdmin reports whether the user holds the distinguished admin role.
func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.perms.UserHasRole(ctx, s.db, userID, domain.AdminRoleName)
}

// CanTable reports whether the user may perform a CRUD action on a table.
// Unknown actions deny. No admin bypass: a missing permission row denies
// even admins.
func (s *Service) CanTable(ctx context.Context, userID int64, table string, action domain.TableAction) (bool, error) {
	if _, ok := domain.ParseTableAction(string(action)); !ok {
		return false, nil
	}
	return s.perms.TableGrant(ctx, s.db, userID, table, action)
}

// CanPanel reports whether the user may perform an admin-panel action.
// Unknown actions deny; admins always pass.
func (s *Service) CanPanel(ctx context.Context, userID int64, action domain.PanelAction) (bool, error) {
	if _, ok := domain.ParsePanelAction(string(action)); !ok {
		return false, nil
	}
	admin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return s.perms.PanelGrant(ctx, s.db, userID, action)
}

// CanField reports whether the user may edit a player attribute on a side.
// Unknown fields and sides deny; admins always pass.
func (s *Service) CanField(ctx context.Context, userID int64, side domain.Side, field string) (bool, error) {
	if side < domain.SideCivilian || side > domain.SideUNCDA {
		return false, nil
	}
	if !domain.IsKVField(field) {
		return false, nil
	}
	admin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return s.perms.FieldGrant(ctx, s.db, userID, side, field)
}
