package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/darasa-io/darasa/core/user"
	"github.com/darasa-io/darasa/fs"
)

var gooseRunFunc = goose.RunFS // mockable

// bootstrap accounts, one per role, guaranteed to exist after migrating up
var seedUsers = []struct {
	name, username, email string
	roles                 []string
}{
	{"Admin", "admin", "admin@darasa.cd", user.AdminRoles},
	{"Instructor", "instructor", "instructor@darasa.cd", user.InstructorRoles},
	{"Student", "student", "student@darasa.cd", user.StudentRoles},
}

const seedUserPwd = "ChangeMe!"

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	if err := gooseRunFunc(args[0], cli.db.DB.DB, appfs.FS, "migrations", arguments...); err != nil {
		return err
	}

	switch args[0] {
	case "up", "up-by-one", "up-to":
		return cli.seedDefaultUsers()
	}
	return nil
}

// seedDefaultUsers creates the missing bootstrap accounts. Existing accounts
// are left untouched so rotated passwords survive re-runs.
func (cli *commandLine) seedDefaultUsers() error {
	ctx := context.Background()
	for _, seed := range seedUsers {
		_, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: seed.username})
		if err == nil {
			continue
		}
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}

		now := time.Now().UTC()
		usr := user.User{
			Name:      seed.name,
			Username:  seed.username,
			Email:     seed.email,
			Roles:     seed.roles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		usr.SetActive(true)
		if err = usr.SetPassword(seedUserPwd); err != nil {
			return err
		}
		if _, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
			return errors.Wrapf(err, "seeding user %q", seed.username)
		}
	}
	return nil
}
