package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/session"
)

type loginCmd struct {
	email, password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in and store the session" }
func (*loginCmd) Usage() string {
	return `login -email <email> -password <password>
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email address.")
	f.StringVar(&c.password, "password", "", "Password.")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	sess, err := appFrom(args).Auth.Issue(ctx, session.Credentials{Email: c.email, Password: c.password})
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
	return subcommands.ExitSuccess
}

type registerCmd struct {
	email, password, name string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a user and sign in" }
func (*registerCmd) Usage() string {
	return `register -email <email> -password <password> -name <name>
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email address.")
	f.StringVar(&c.password, "password", "", "Password.")
	f.StringVar(&c.name, "name", "", "Display name.")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		return usage(c, "-name is required")
	}
	sess, err := appFrom(args).Auth.Issue(ctx, session.Credentials{Email: c.email, Password: c.password, Name: c.name})
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Registered %s <%s> with id %s\n", sess.User.Name, sess.User.Email, sess.User.ID)
	return subcommands.ExitSuccess
}

type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "clear the stored session" }
func (*logoutCmd) Usage() string {
	return `logout
`
}

func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (*logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if err := appFrom(args).Auth.Clear(ctx); err != nil {
		return fail(err)
	}
	fmt.Fprintln(stdout, "Logged out")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "show the signed-in user" }
func (*whoamiCmd) Usage() string {
	return `whoami

  Validates the stored token and prints its user.
`
}

func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (*whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	auth := appFrom(args).Auth
	cur, ok := auth.Current(ctx)
	if !ok {
		fmt.Fprintln(stdout, "Not logged in")
		return subcommands.ExitFailure
	}
	user, err := auth.Validate(ctx, cur.Token)
	if errors.Is(err, session.ErrUnauthenticated) || errors.Is(err, session.ErrInvalidToken) {
		fmt.Fprintln(stdout, "Stored session is not valid")
		return subcommands.ExitFailure
	}
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "%s <%s> (id %s)\n", user.Name, user.Email, user.ID)
	return subcommands.ExitSuccess
}
