package tenancy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/shared"
)

type mockRepository struct {
	principals map[int64]*PrincipalRecord
	firms      map[uuid.UUID]*Firm

	txError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		principals: map[int64]*PrincipalRecord{},
		firms:      map[uuid.UUID]*Firm{},
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, &mockTxRepo{mock: m})
}

func (m *mockRepository) GetFirm(ctx context.Context, firmID uuid.UUID) (*Firm, error) {
	firm, ok := m.firms[firmID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return firm, nil
}

func (m *mockRepository) RenameFirm(ctx context.Context, firmID uuid.UUID, name string) (*Firm, error) {
	firm, ok := m.firms[firmID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	firm.Name = name
	return firm, nil
}

type mockTxRepo struct {
	mock *mockRepository
}

func (t *mockTxRepo) GetPrincipal(ctx context.Context, principalID int64) (*PrincipalRecord, error) {
	p, ok := t.mock.principals[principalID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (t *mockTxRepo) CreateFirm(ctx context.Context, firm Firm) error {
	copied := firm
	t.mock.firms[firm.ID] = &copied
	return nil
}

func (t *mockTxRepo) BindPrincipal(ctx context.Context, principalID int64, firmID uuid.UUID) error {
	t.mock.principals[principalID].FirmID = &firmID
	return nil
}

type mockGranter struct {
	grants []int64
	err    error
}

func (g *mockGranter) GrantDefaultRole(ctx context.Context, principalID int64, firmID uuid.UUID) error {
	if g.err != nil {
		return g.err
	}
	g.grants = append(g.grants, principalID)
	return nil
}

func TestResolveCreatesFirmOnFirstAccess(t *testing.T) {
	repo := newMockRepository()
	repo.principals[1] = &PrincipalRecord{ID: 1, Email: "ada@windmill.law"}
	granter := &mockGranter{}
	svc := NewService(repo, granter, nil)

	firmID, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, firmID)

	firm, ok := repo.firms[firmID]
	require.True(t, ok)
	assert.Equal(t, "windmill.law", firm.Name)
	require.NotNil(t, repo.principals[1].FirmID)
	assert.Equal(t, firmID, *repo.principals[1].FirmID)
	assert.Equal(t, []int64{1}, granter.grants)
}

func TestResolveIdempotent(t *testing.T) {
	repo := newMockRepository()
	firmID := uuid.New()
	roleID := int64(3)
	repo.firms[firmID] = &Firm{ID: firmID, Name: "windmill.law"}
	repo.principals[1] = &PrincipalRecord{ID: 1, Email: "ada@windmill.law", FirmID: &firmID, RoleID: &roleID}
	granter := &mockGranter{}
	svc := NewService(repo, granter, nil)

	got, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, firmID, got)
	assert.Empty(t, granter.grants)
	assert.Len(t, repo.firms, 1)
}

func TestResolveGrantsRoleWhenMissing(t *testing.T) {
	// A firm binding without a role means an earlier grant failed; the
	// resolver retries it.
	repo := newMockRepository()
	firmID := uuid.New()
	repo.firms[firmID] = &Firm{ID: firmID, Name: "windmill.law"}
	repo.principals[1] = &PrincipalRecord{ID: 1, Email: "ada@windmill.law", FirmID: &firmID}
	granter := &mockGranter{}
	svc := NewService(repo, granter, nil)

	got, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, firmID, got)
	assert.Equal(t, []int64{1}, granter.grants)
}

func TestResolveMissingPrincipalIsIntegrityError(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockGranter{}, nil)

	_, err := svc.Resolve(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrIntegrity))
}

func TestResolveRoleGrantFailure(t *testing.T) {
	repo := newMockRepository()
	repo.principals[1] = &PrincipalRecord{ID: 1, Email: "ada@windmill.law"}
	granter := &mockGranter{err: errors.New("role table locked")}
	svc := NewService(repo, granter, nil)

	_, err := svc.Resolve(context.Background(), 1)
	require.Error(t, err)

	// The firm binding committed; only the role grant is outstanding.
	require.NotNil(t, repo.principals[1].FirmID)
}

func TestRenameValidation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockGranter{}, nil)

	_, err := svc.Rename(context.Background(), uuid.New(), "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestFirmNameFromEmail(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"ada@windmill.law", "windmill.law"},
		{"ada@WINDMILL.LAW", "windmill.law"},
		{"weird@user@firm.example.com", "firm.example.com"},
		{"nodomain@localhost", "Unnamed Firm"},
		{"trailing@", "Unnamed Firm"},
		{"noatsign", "Unnamed Firm"},
		{"", "Unnamed Firm"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FirmNameFromEmail(tc.email), tc.email)
	}
}
