package user_test

import (
	"context"
	"net/mail"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/user"
	"github.com/darasa-io/darasa/services/email"
	"github.com/darasa-io/darasa/storage/database/dummy"
	"github.com/darasa-io/darasa/tests"
)

func setup(t *testing.T) (user.Service, user.Repository) {
	t.Helper()

	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewUserRepository(db)
	return user.NewServiceMock(repo, emailsvc.NewConsoleServiceMock()), repo
}

func Test_service_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Hero",
		Username: "heroman",
		Email:    "hero@test.cd",
		Password: "LolC@t123",
		Roles:    []string{user.RoleStudent},
	})
	require.NoError(t, err)

	assert.NotZero(t, usr.ID)
	assert.True(t, *usr.IsActive, "new accounts start out active")
	assert.NoError(t, usr.CheckPassword("LolC@t123"))
	assert.Error(t, usr.CheckPassword("nope"))

	// welcome mail
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, mail.Address{Name: usr.Name, Address: usr.Email}, emailsvc.SentMessages[0].To[0])

	// username and email are reserved now
	err = svc.CheckUniqueness(ctx, "heroman", "other@test.cd")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	err = svc.CheckUniqueness(ctx, "other", "hero@test.cd")
	require.ErrorAs(t, err, &vErr)
	assert.NoError(t, svc.CheckUniqueness(ctx, "heroman", "hero@test.cd", usr))
}

func Test_service_GetByUsernameOrEmail(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Hero", "heroman", "hero@test.cd", "", []string{user.RoleStudent}, true)

	got, err := svc.GetByUsernameOrEmail(ctx, "  HEROMAN ") // cleaned & lowered
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	got, err = svc.GetByUsernameOrEmail(ctx, "hero@test.cd")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.GetByUsernameOrEmail(ctx, "ghost")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func Test_service_UpdateDelete(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Hero", "heroman", "hero@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, repo, "Rival", "rivalus", "rival@test.cd", "", []string{user.RoleStudent}, true)

	updated, err := svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Super Hero", Password: "LolC@t123", PasswordConfirm: "LolC@t123"})
	require.NoError(t, err)
	assert.Equal(t, "Super Hero", updated.Name)
	assert.NoError(t, updated.CheckPassword("LolC@t123"))

	require.NoError(t, svc.Delete(ctx, usr.ID, other.ID))
	_, err = svc.GetByID(ctx, usr.ID)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	_, err = svc.GetByID(ctx, other.ID)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func Test_service_PasswordReset(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Hero", "heroman", "hero@test.cd", "oldpwd", []string{user.RoleStudent}, true)

	require.NoError(t, svc.RequestPasswordReset(ctx, usr.Email))
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Contains(t, emailsvc.SentMessages[0].BodyStr, "password reset")

	err := svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             user.EncodeUID(usr),
		Token:           user.MakeToken(usr),
		Password:        "LolC@t123",
		PasswordConfirm: "LolC@t123",
	})
	require.NoError(t, err)
	assert.Len(t, emailsvc.SentMessages, 2, "reset confirmation mail sent")

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("LolC@t123"))
	assert.Error(t, got.CheckPassword("oldpwd"))

	// a used token no longer verifies: the hash baked into it changed
	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             user.EncodeUID(usr),
		Token:           user.MakeToken(usr),
		Password:        "NewC@t123",
		PasswordConfirm: "NewC@t123",
	})
	require.Error(t, err)
	require.IsType(t, &core.ValidationError{}, errors.Cause(err))
}
