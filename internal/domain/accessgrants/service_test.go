package accessgrants

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Grant
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Grant{}}
}

func (r *testRepo) Create(ctx context.Context, g Grant) error {
	if g.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[g.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *testRepo) Update(ctx context.Context, g Grant) error {
	if g.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[g.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Grant, error) {
	g, ok := r.byID[id]
	if !ok {
		return Grant{}, errRepoNotFound
	}
	return g, nil
}

func (r *testRepo) ListByFarm(ctx context.Context, farmID string) ([]Grant, error) {
	out := make([]Grant, 0)
	for _, g := range r.byID {
		if g.FarmID == farmID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *testRepo) GetActiveGrant(ctx context.Context, farmID, granteeUserID string) (Grant, error) {
	var winner Grant
	has := false

	for _, g := range r.byID {
		if g.FarmID != farmID {
			continue
		}
		if g.GranteeUserID != granteeUserID {
			continue
		}
		if g.Status != StatusActive {
			continue
		}

		if !has {
			winner = g
			has = true
			continue
		}
		if g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			continue
		}
		if g.UpdatedAt.Equal(winner.UpdatedAt) && g.CreatedAt.After(winner.CreatedAt) {
			winner = g
		}
	}

	if !has {
		return Grant{}, errRepoNotFound
	}
	return winner, nil
}

func (r *testRepo) ListByGrantee(ctx context.Context, granteeUserID string) ([]Grant, error) {
	out := make([]Grant, 0)
	for _, g := range r.byID {
		if g.GranteeUserID == granteeUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Invite_DefaultScopes_WhenEmpty(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	g, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
		Scopes:        nil,
	})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if g.Status != StatusInvited {
		t.Fatalf("expected status invited, got %s", g.Status)
	}
	if g.CreatedAt != now || g.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
	// default: farm:read + actions:read
	if !HasScope(g, ScopeFarmRead) || !HasScope(g, ScopeActionsRead) {
		t.Fatalf("expected default scopes farm:read + actions:read, got %#v", g.Scopes)
	}
}

func TestService_Invite_StrictScopes_RejectsUnknown(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
		Scopes:        []Scope{ScopeTreatmentsRead, Scope("bad:scope")},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Invite_SelfInviteRejected(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "owner-1",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Invite_Dedup_UpdatesSameGrant(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(5 * time.Minute)

	svc.now = func() time.Time { return now1 }
	g1, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
		Scopes:        []Scope{ScopeTreatmentsRead},
	})
	if err != nil {
		t.Fatalf("Invite #1 error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	g2, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
		Scopes:        []Scope{ScopeTreatmentsRead, ScopeTreatmentsCreate},
	})
	if err != nil {
		t.Fatalf("Invite #2 error: %v", err)
	}

	if g2.ID != g1.ID {
		t.Fatalf("expected same grant ID (dedup), got %s vs %s", g1.ID, g2.ID)
	}
	if g2.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt to change on reinvite")
	}
	if !HasScope(g2, ScopeTreatmentsCreate) || !HasScope(g2, ScopeTreatmentsRead) {
		t.Fatalf("expected scopes updated, got %#v", g2.Scopes)
	}
}

func TestService_Invite_AfterRevoke_CreatesNewGrant(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	g1, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	if _, err := svc.Revoke(context.Background(), g1.ID, "owner-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	g2, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
	})
	if err != nil {
		t.Fatalf("Invite #2 error: %v", err)
	}
	if g2.ID == g1.ID {
		t.Fatalf("expected a fresh grant after revoke, got the same ID")
	}
	if g2.Status != StatusInvited {
		t.Fatalf("expected invited, got %s", g2.Status)
	}
}

func TestService_Accept_SetsActive_AndIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(2 * time.Minute)

	svc.now = func() time.Time { return now1 }
	g, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	accepted, err := svc.Accept(context.Background(), g.ID, "vet-1")
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if accepted.Status != StatusActive {
		t.Fatalf("expected active, got %s", accepted.Status)
	}

	// idempotente
	accepted2, err := svc.Accept(context.Background(), g.ID, "vet-1")
	if err != nil {
		t.Fatalf("Accept #2 error: %v", err)
	}
	if accepted2.Status != StatusActive {
		t.Fatalf("expected active after idempotent accept, got %s", accepted2.Status)
	}
}

func TestService_Accept_WrongGrantee_Forbidden(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	g, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	_, err = svc.Accept(context.Background(), g.ID, "stranger")
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Revoke_Idempotent_SetsRevokedAt(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	g, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	revoked, err := svc.Revoke(context.Background(), g.ID, "owner-1")
	if err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if revoked.Status != StatusRevoked {
		t.Fatalf("expected revoked, got %s", revoked.Status)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(now) {
		t.Fatalf("expected RevokedAt set to now, got %v", revoked.RevokedAt)
	}

	again, err := svc.Revoke(context.Background(), g.ID, "owner-1")
	if err != nil {
		t.Fatalf("Revoke #2 error: %v", err)
	}
	if again.Status != StatusRevoked {
		t.Fatalf("expected revoked after idempotent revoke, got %s", again.Status)
	}
}

func TestService_Revoke_OnlyOwner(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	g, err := svc.Invite(context.Background(), InviteInput{
		FarmID:        "farm-1",
		OwnerUserID:   "owner-1",
		GranteeUserID: "vet-1",
	})
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}

	_, err = svc.Revoke(context.Background(), g.ID, "vet-1")
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
