package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pcforge-backend/internal/store"
	"github.com/angelmondragon/pcforge-backend/pkg/config"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
)

var testArgon = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func newTestService(t *testing.T) (Service, *store.Store) {
	t.Helper()
	st := store.NewMemory()
	svc, err := NewService(st, testArgon)
	require.NoError(t, err)
	return svc, st
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(nil, testArgon)
	assert.Error(t, err)
}

func TestCreateAndLookup(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "  Builder ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "builder", created.Username)

	stored, err := st.Users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$argon2id$")

	byID, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "builder", byID.Username)

	byName, err := svc.GetByUsername(ctx, "BUILDER")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "builder", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Builder", "another-password")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "ab", "short")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	details, _ := pkgerrors.As(err).Details().(map[string]string)
	assert.NotEmpty(t, details["username"])
	assert.NotEmpty(t, details["password"])
}

func TestLookupMisses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, 99)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.GetByUsername(ctx, "nobody")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "builder", "correct-horse")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "builder", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "builder", user.Username)

	_, err = svc.Authenticate(ctx, "builder", "wrong-password")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Authenticate(ctx, "ghost", "correct-horse")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

// racingUsers misses the pre-insert lookup, as a second replica would, and
// then fails the insert on the unique index.
type racingUsers struct {
	store.Collection[models.User]
	insertErr error
}

func (r racingUsers) List(context.Context, ...store.Predicate[models.User]) ([]models.User, error) {
	return nil, nil
}

func (r racingUsers) Create(context.Context, models.User) (models.User, error) {
	return models.User{}, r.insertErr
}

func TestCreateMapsUniqueIndexViolation(t *testing.T) {
	st := store.NewMemory()
	st.Users = racingUsers{
		Collection: st.Users,
		insertErr:  errors.New("UNIQUE constraint failed: users.username"),
	}
	svc, err := NewService(st, testArgon)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "builder", "correct-horse")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreateWrapsOtherInsertErrors(t *testing.T) {
	st := store.NewMemory()
	st.Users = racingUsers{Collection: st.Users, insertErr: errors.New("disk full")}
	svc, err := NewService(st, testArgon)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "builder", "correct-horse")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal), "got %v", err)
}

func TestSeed(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	created, err := Seed(ctx, svc, "", "ignored-password")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = Seed(ctx, svc, "admin", "correct-horse")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = Seed(ctx, svc, "admin", "correct-horse")
	require.NoError(t, err)
	assert.False(t, created)

	all, err := st.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Authenticate(ctx, "admin", "correct-horse")
	assert.NoError(t, err)

	_, err = Seed(ctx, svc, "admin2", "short")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}
