// Package policy decides which roles may perform which operations, and on
// whose records.
package policy

import (
	"fmt"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"github.com/google/uuid"
)

type Resource string

const (
	ResourceOrder     Resource = "order"
	ResourceStore     Resource = "store"
	ResourceProduct   Resource = "product"
	ResourceUser      Resource = "user"
	ResourceDashboard Resource = "dashboard"
)

type Action string

const (
	ActionCreate         Action = "create"
	ActionRead           Action = "read"
	ActionList           Action = "list"
	ActionListMine       Action = "list_mine"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionUpdateStatus   Action = "update_status"
	ActionComment        Action = "comment"
	ActionUpdateRefund   Action = "update_refund"
	ActionUpdateIssues   Action = "update_issues"
	ActionUploadDocument Action = "upload_document"
	ActionUpdateRole     Action = "update_role"
)

// Permission names one operation on one resource.
type Permission struct {
	Resource Resource
	Action   Action
}

func (p Permission) String() string {
	return fmt.Sprintf("%s:%s", p.Resource, p.Action)
}

// Scope is how far a granted permission reaches.
type Scope int

const (
	// ScopeNone denies the operation.
	ScopeNone Scope = iota
	// ScopeOwn allows it only on records the principal owns.
	ScopeOwn
	// ScopeAll allows it on any record.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeOwn:
		return "own"
	case ScopeAll:
		return "all"
	}
	return "none"
}

var (
	OrderCreate       = Permission{ResourceOrder, ActionCreate}
	OrderRead         = Permission{ResourceOrder, ActionRead}
	OrderList         = Permission{ResourceOrder, ActionList}
	OrderListMine     = Permission{ResourceOrder, ActionListMine}
	OrderUpdateStatus = Permission{ResourceOrder, ActionUpdateStatus}
	OrderComment      = Permission{ResourceOrder, ActionComment}
	OrderUpdateRefund = Permission{ResourceOrder, ActionUpdateRefund}
	OrderUpdateIssues = Permission{ResourceOrder, ActionUpdateIssues}

	StoreCreate         = Permission{ResourceStore, ActionCreate}
	StoreRead           = Permission{ResourceStore, ActionRead}
	StoreList           = Permission{ResourceStore, ActionList}
	StoreUpdate         = Permission{ResourceStore, ActionUpdate}
	StoreDelete         = Permission{ResourceStore, ActionDelete}
	StoreUploadDocument = Permission{ResourceStore, ActionUploadDocument}

	ProductCreate = Permission{ResourceProduct, ActionCreate}
	ProductRead   = Permission{ResourceProduct, ActionRead}
	ProductList   = Permission{ResourceProduct, ActionList}
	ProductUpdate = Permission{ResourceProduct, ActionUpdate}
	ProductDelete = Permission{ResourceProduct, ActionDelete}

	UserList       = Permission{ResourceUser, ActionList}
	UserUpdateRole = Permission{ResourceUser, ActionUpdateRole}
	UserDelete     = Permission{ResourceUser, ActionDelete}

	DashboardRead = Permission{ResourceDashboard, ActionRead}
)

type grants map[models.Role]Scope

var (
	operators      = grants{models.RoleAdmin: ScopeAll, models.RoleStaff: ScopeAll, models.RoleMerchant: ScopeOwn}
	adminOnly      = grants{models.RoleAdmin: ScopeAll}
	adminAndStaff  = grants{models.RoleAdmin: ScopeAll, models.RoleStaff: ScopeAll}
	owningMerchant = grants{models.RoleMerchant: ScopeOwn}
)

var anyAuthenticated = grants{
	models.RoleAdmin: ScopeAll, models.RoleManager: ScopeAll, models.RoleAgent: ScopeAll,
	models.RoleMerchant: ScopeAll, models.RoleStaff: ScopeAll, models.RoleViewer: ScopeAll,
	models.RoleNew: ScopeAll,
}

// table is the complete capability matrix. A permission missing from it is
// denied for everyone.
var table = map[Permission]grants{
	OrderCreate:       owningMerchant,
	OrderRead:         operators,
	OrderList:         operators,
	OrderListMine:     owningMerchant,
	OrderUpdateStatus: operators,
	OrderComment:      anyAuthenticated,
	OrderUpdateRefund: adminOnly,
	OrderUpdateIssues: adminAndStaff,

	StoreCreate:         {models.RoleAdmin: ScopeAll, models.RoleMerchant: ScopeOwn},
	StoreRead:           operators,
	StoreList:           operators,
	StoreUpdate:         adminOnly,
	StoreDelete:         adminOnly,
	StoreUploadDocument: owningMerchant,

	ProductCreate: operators,
	ProductRead:   operators,
	ProductList:   operators,
	ProductUpdate: operators,
	ProductDelete: operators,

	UserList:       adminOnly,
	UserUpdateRole: adminOnly,
	UserDelete:     adminOnly,

	DashboardRead: adminAndStaff,
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

// NewPrincipal builds a principal from a loaded user.
func NewPrincipal(u *models.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// ScopeOf returns the reach of perm for p, ScopeNone when not granted.
func ScopeOf(p Principal, perm Permission) Scope {
	return table[perm][p.Role]
}

// Authorize checks perm for p against a record owned by owner. With ScopeOwn
// the caller must be the owner; owner must be the value read from storage.
func Authorize(p Principal, perm Permission, owner uuid.UUID) error {
	switch ScopeOf(p, perm) {
	case ScopeAll:
		return nil
	case ScopeOwn:
		if owner != uuid.Nil && owner == p.UserID {
			return nil
		}
	}
	util.AuthorizationDeniedTotal.WithLabelValues(perm.String(), string(p.Role)).Inc()
	return apperror.Forbidden(fmt.Sprintf("role %q may not %s this %s", p.Role, perm.Action, perm.Resource))
}

// Allowed reports whether p holds perm at any scope.
func Allowed(p Principal, perm Permission) bool {
	return ScopeOf(p, perm) != ScopeNone
}

// Require fails unless p holds perm at some scope. Use it to gate an
// operation before ownership is known, then Authorize once it is.
func Require(p Principal, perm Permission) error {
	if Allowed(p, perm) {
		return nil
	}
	util.AuthorizationDeniedTotal.WithLabelValues(perm.String(), string(p.Role)).Inc()
	return apperror.Forbidden(fmt.Sprintf("role %q may not %s %s", p.Role, perm.Action, perm.Resource))
}
