package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/user"
)

const userColumns = "id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login"

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

// userRow shadows User.Roles with its array representation.
type userRow struct {
	user.User
	Roles pq.StringArray `db:"roles"`
}

func (row userRow) unpack() user.User {
	usr := row.User
	usr.Roles = []string(row.Roles)
	return usr
}

func unpackUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	if username == "" && email == "" {
		return nil
	}

	qb := newQueryBuilder(`SELECT username, email FROM users`)
	var matches []string
	if username != "" {
		matches = append(matches, fmt.Sprintf("username = %s", qb.arg(username)))
	}
	if email != "" {
		matches = append(matches, fmt.Sprintf("email = %s", qb.arg(email)))
	}
	qb.whereClause("(" + joinOr(matches) + ")")
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		qb.whereClause("id NOT IN " + inClause(qb, ids))
	}

	var rows []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	q, args := qb.build(nil, core.Pagination{})
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if username != "" && row.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	const q = `
	INSERT INTO users (name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`

	err := getExec(repo.exec, exec).GetContext(
		ctx, &usr.ID, q,
		usr.Name, usr.Username, usr.Email, usr.IsActive, pq.Array(usr.Roles),
		usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]user.User, error) {
	qb := newQueryBuilder(`SELECT ` + userColumns + ` FROM users`)
	if filter != nil {
		if filter.Search != "" {
			search := qb.arg("%" + filter.Search + "%")
			qb.whereClause(fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", search))
		}
		if len(filter.Roles) > 0 {
			matches := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				matches = append(matches, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(roles) AS role WHERE role LIKE %s)", qb.arg(role+"%")))
			}
			qb.whereClause("(" + joinOr(matches) + ")")
		}
		if filter.IsActive != nil {
			qb.whereClause("is_active = " + qb.arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			qb.whereClause("created_at >= " + qb.arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			qb.whereClause("created_at <= " + qb.arg(filter.CreatedTo.UTC()))
		}
	}

	var rows []userRow
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	qb := newQueryBuilder(`SELECT ` + userColumns + ` FROM users`)
	switch {
	case filter.ID != 0:
		qb.whereClause("id = " + qb.arg(filter.ID))
	case filter.Username != "":
		qb.whereClause("username = " + qb.arg(filter.Username))
	case filter.Email != "":
		qb.whereClause("email = " + qb.arg(filter.Email))
	case filter.UsernameOrEmail != "":
		uoe := qb.arg(filter.UsernameOrEmail)
		qb.whereClause(fmt.Sprintf("(username = %[1]s OR email = %[1]s)", uoe))
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	q, args := qb.build(nil, core.Pagination{})
	if err := getExec(repo.exec, exec).GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return row.unpack(), nil
}

// UpdateUser only saves set fields.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	ub := &updateBuilder{}
	if usr.Name != "" {
		ub.set("name", usr.Name)
	}
	if usr.Username != "" {
		ub.set("username", usr.Username)
	}
	if usr.Email != "" {
		ub.set("email", usr.Email)
	}
	if usr.IsActive != nil {
		ub.set("is_active", *usr.IsActive)
	}
	if usr.Roles != nil {
		ub.set("roles", pq.Array(usr.Roles))
	}
	if usr.PasswordHash != nil {
		ub.set("password_hash", usr.PasswordHash)
	}
	if !usr.LastLogin.IsZero() {
		ub.set("last_login", usr.LastLogin.UTC())
	}
	if !usr.UpdatedAt.IsZero() {
		ub.set("updated_at", usr.UpdatedAt.UTC())
	}
	if len(ub.sets) == 0 {
		return repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
	}

	var row userRow
	q, args := ub.build("users", userColumns, usr.ID)
	if err := getExec(repo.exec, exec).GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return row.unpack(), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	existing, err := repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: usr.Username}, exec...)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			if usr.CreatedAt.IsZero() {
				now := time.Now().UTC()
				usr.CreatedAt = now
				usr.UpdatedAt = now
			}
			return repo.CreateUser(ctx, usr, exec...)
		}
		return user.User{}, err
	}
	usr.ID = existing.ID
	usr.UpdatedAt = time.Now().UTC()
	return repo.UpdateUser(ctx, usr, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	qb := newQueryBuilder("")
	q := "DELETE FROM users WHERE id IN " + inClause(qb, ids)
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q, qb.args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted users")
	}
	return int(count), nil
}
