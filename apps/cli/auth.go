package main

import (
	"context"
	"strings"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/storage/kvstore"
)

func (cli *commandLine) signUp(ctx context.Context, args []string) error {
	cmd := cli.flagSet("signup")
	email := cmd.String("email", "", "Your email address.")
	uname := cmd.String("username", "", "Your display name.")
	role := cmd.String("role", core.RoleStudent, "Account role: "+roleChoices()+".")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *email == "" || *uname == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}
	usr, err := cli.users.SignUp(ctx, user.NewUser{Email: *email, Username: *uname, Password: pwd, Role: *role})
	if err != nil {
		return err
	}
	if err := cli.saveCurrentUser(ctx, usr); err != nil {
		return err
	}
	cli.printf("Welcome, %s! You are signed in as a %s.\n", usr.Username, usr.Role)
	return nil
}

func roleChoices() string {
	names := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		names = append(names, r.Value)
	}
	return strings.Join(names, " or ")
}

func (cli *commandLine) signIn(ctx context.Context, args []string) error {
	cmd := cli.flagSet("signin")
	email := cmd.String("email", "", "Your email address. The password will be prompted next.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if *email == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		cmd.Usage()
		return errHelp
	}
	usr, err := cli.users.SignIn(ctx, *email, pwd)
	if err != nil {
		return err
	}
	if err := cli.saveCurrentUser(ctx, usr); err != nil {
		return err
	}
	cli.printf("Welcome back, %s!\n", usr.Username)
	return nil
}

func (cli *commandLine) signOut(ctx context.Context) error {
	if err := cli.repos.Store.ClearCurrentUser(ctx); err != nil {
		return err
	}
	cli.printf("Signed out.\n")
	return nil
}

func (cli *commandLine) whoAmI(ctx context.Context) error {
	usr, err := cli.users.Current(ctx)
	if err != nil {
		return err
	}
	cli.printf("%s <%s> (%s)\n", usr.Username, usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) editProfile(ctx context.Context, args []string) error {
	cmd := cli.flagSet("profile")
	uname := cmd.String("username", "", "New display name.")
	email := cmd.String("email", "", "New email address.")
	changePwd := cmd.Bool("password", false, "Change the password. It will be prompted.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}

	var uu user.UpdateUser
	if *uname != "" {
		uu.Username = uname
	}
	if *email != "" {
		uu.Email = email
	}
	if *changePwd {
		pwd, err := cli.promptPassword("Enter new password:")
		if err != nil {
			return err
		}
		uu.Password = &pwd
	}

	usr, err := cli.users.UpdateProfile(ctx, uu)
	if err != nil {
		return err
	}
	if err := cli.saveCurrentUser(ctx, usr); err != nil {
		return err
	}
	cli.printf("Profile updated: %s <%s>\n", usr.Username, usr.Email)
	return nil
}

// saveCurrentUser snapshots usr, without credentials, as the signed-in user.
func (cli *commandLine) saveCurrentUser(ctx context.Context, usr user.User) error {
	rec := kvstore.UserRecord(usr)
	delete(rec, "password_hash")
	rec["id"] = usr.ID
	rec["created_at"] = kvstore.FormatTime(usr.CreatedAt)
	return cli.repos.Store.SaveCurrentUser(ctx, rec)
}
