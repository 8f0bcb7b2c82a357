package accessgrants

import "time"

type Scope string

const (
	ScopeFarmRead         Scope = "farm:read"
	ScopeAnimalsManage    Scope = "animals:manage"
	ScopeTreatmentsRead   Scope = "treatments:read"
	ScopeTreatmentsCreate Scope = "treatments:create"
	ScopeLotsManage       Scope = "lots:manage"
	ScopeActionsRead      Scope = "actions:read"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Grant delega acceso sobre una explotación a otro usuario
// (veterinario, empleado, asesor).
type Grant struct {
	ID string

	FarmID string

	OwnerUserID   string // quien comparte
	GranteeUserID string // delegado

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
