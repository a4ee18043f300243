// ABOUTME: principalctl subcommands for session actions and management endpoints
// ABOUTME: Dispatches on principal kind and renders results with color and tabwriter

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/principal-session/internal/app"
	"github.com/2389/principal-session/internal/principal"
	"github.com/2389/principal-session/internal/session"
)

var errNotSignedIn = errors.New("not signed in (run login first)")

type cli struct {
	app  *app.App
	kind principal.Kind
	out  io.Writer
}

func (c *cli) isGym() bool {
	return c.kind == principal.GymKind
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return c.cmdRegister(ctx, args)
	case "login":
		return c.cmdLogin(ctx, args)
	case "logout":
		return c.cmdLogout(ctx)
	case "whoami":
		return c.cmdWhoami(ctx)
	case "users":
		return c.cmdUsers(ctx)
	case "toggle":
		return c.cmdToggle(ctx, args)
	case "remove":
		return c.cmdRemove(ctx, args)
	case "stats":
		return c.cmdStats(ctx)
	case "pending":
		return c.cmdPending(ctx)
	case "approve":
		return c.cmdApprove(ctx, args)
	case "reject":
		return c.cmdReject(ctx, args)
	case "plans":
		return c.cmdPlans(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// actionResult turns a failed session action into an error.
func actionResult(res session.Result) error {
	switch {
	case res.Success:
		return nil
	case res.Stale:
		return errors.New("superseded by a newer action")
	case res.Error != "":
		return errors.New(res.Error)
	default:
		return errNotSignedIn
	}
}

func passwordOr(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("PRINCIPAL_PASSWORD")
}

func (c *cli) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var data principal.RegisterGymData
	fs.StringVar(&data.Name, "name", "", "display name")
	fs.StringVar(&data.CNPJ, "cnpj", "", "CNPJ")
	fs.StringVar(&data.Email, "email", "", "login email")
	fs.StringVar(&data.Password, "password", "", "password (or PRINCIPAL_PASSWORD)")
	fs.StringVar(&data.Phone, "phone", "", "phone")
	fs.StringVar(&data.Address, "address", "", "address")
	fs.StringVar(&data.ResponsibleName, "responsible", "", "responsible person")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data.Password = passwordOr(data.Password)

	var res session.Result
	if c.isGym() {
		res = c.app.Gym.Register(ctx, data)
	} else {
		res = c.app.Organization.Register(ctx, principal.RegisterOrganizationData(data))
	}
	if err := actionResult(res); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(c.out, "Registered %s %q\n", c.kind.Name, data.Name)
	return c.printProfile()
}

func (c *cli) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var creds principal.Credentials
	fs.StringVar(&creds.Email, "email", "", "login email")
	fs.StringVar(&creds.Password, "password", "", "password (or PRINCIPAL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	creds.Password = passwordOr(creds.Password)
	if creds.Email == "" || creds.Password == "" {
		return errors.New("login requires -email and -password")
	}

	var res session.Result
	if c.isGym() {
		res = c.app.Gym.Login(ctx, creds)
	} else {
		res = c.app.Organization.Login(ctx, creds)
	}
	if err := actionResult(res); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(c.out, "Logged in as %s\n", creds.Email)
	return nil
}

func (c *cli) cmdLogout(ctx context.Context) error {
	if c.isGym() {
		c.app.Gym.Logout(ctx)
	} else {
		c.app.Organization.Logout(ctx)
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *cli) cmdWhoami(ctx context.Context) error {
	var res session.Result
	if c.isGym() {
		res = c.app.Gym.CheckSession(ctx)
	} else {
		res = c.app.Organization.CheckSession(ctx)
	}
	if err := actionResult(res); err != nil {
		return err
	}
	return c.printProfile()
}

type profileView struct {
	ID              int64
	Name            string
	CNPJ            string
	Email           string
	Phone           string
	Address         string
	ResponsibleName string
	IsActive        bool
}

func (c *cli) printProfile() error {
	var p profileView
	if c.isGym() {
		g := c.app.Gym.Views().CurrentPrincipal()
		if g == nil {
			return errNotSignedIn
		}
		p = profileView{g.ID, g.Name, g.CNPJ, g.Email, g.Phone, g.Address, g.ResponsibleName, g.IsActive}
	} else {
		o := c.app.Organization.Views().CurrentPrincipal()
		if o == nil {
			return errNotSignedIn
		}
		p = profileView{o.ID, o.Name, o.CNPJ, o.Email, o.Phone, o.Address, o.ResponsibleName, o.IsActive}
	}

	cyan := color.New(color.FgCyan)
	fmt.Fprintln(c.out)
	cyan.Fprintf(c.out, "  %s\n", c.kind.Name)
	cyan.Fprintln(c.out, "  --------")
	fmt.Fprintf(c.out, "  ID:           %d\n", p.ID)
	fmt.Fprintf(c.out, "  Name:         %s\n", p.Name)
	fmt.Fprintf(c.out, "  CNPJ:         %s\n", p.CNPJ)
	fmt.Fprintf(c.out, "  Email:        %s\n", p.Email)
	fmt.Fprintf(c.out, "  Phone:        %s\n", p.Phone)
	fmt.Fprintf(c.out, "  Address:      %s\n", p.Address)
	fmt.Fprintf(c.out, "  Responsible:  %s\n", p.ResponsibleName)
	if p.IsActive {
		color.New(color.FgGreen).Fprintln(c.out, "  Status:       active")
	} else {
		color.New(color.FgYellow).Fprintln(c.out, "  Status:       inactive")
	}
	fmt.Fprintln(c.out)
	return nil
}

type userRow struct {
	ID, Name, Email, Status, LinkedAt string
}

func (c *cli) printUsers(rows []userRow) {
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No users")
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tLINKED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.Status, r.LinkedAt)
	}
	w.Flush()
}

func gymRows(users []principal.GymUser) []userRow {
	rows := make([]userRow, len(users))
	for i, u := range users {
		rows[i] = userRow{u.ID, u.FullName, u.Email, u.Status, u.LinkedAt}
	}
	return rows
}

func orgRows(users []principal.OrganizationUser) []userRow {
	rows := make([]userRow, len(users))
	for i, u := range users {
		rows[i] = userRow{strconv.FormatInt(u.ID, 10), u.FullName, u.Email, u.Status, u.LinkedAt}
	}
	return rows
}

func (c *cli) cmdUsers(ctx context.Context) error {
	if c.isGym() {
		users, err := c.app.Gyms.Users(ctx)
		if err != nil {
			return err
		}
		c.printUsers(gymRows(users))
		return nil
	}
	users, err := c.app.Organizations.Users(ctx)
	if err != nil {
		return err
	}
	c.printUsers(orgRows(users))
	return nil
}

// userID returns the single positional ID argument.
func userID(cmd string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("usage: %s <id>", cmd)
	}
	return args[0], nil
}

// orgUserID parses the single positional ID argument as an organization user ID.
func orgUserID(cmd string, args []string) (int64, error) {
	raw, err := userID(cmd, args)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", raw, err)
	}
	return id, nil
}

func (c *cli) cmdToggle(ctx context.Context, args []string) error {
	if c.isGym() {
		id, err := userID("toggle", args)
		if err != nil {
			return err
		}
		u, err := c.app.Gyms.ToggleUserStatus(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s is now %s\n", u.FullName, u.Status)
		return nil
	}

	id, err := orgUserID("toggle", args)
	if err != nil {
		return err
	}
	u, err := c.app.Organizations.ToggleUserStatus(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s is now %s\n", u.FullName, u.Status)
	return nil
}

func (c *cli) cmdRemove(ctx context.Context, args []string) error {
	if c.isGym() {
		id, err := userID("remove", args)
		if err != nil {
			return err
		}
		if err := c.app.Gyms.RemoveUser(ctx, id); err != nil {
			return err
		}
	} else {
		id, err := orgUserID("remove", args)
		if err != nil {
			return err
		}
		if err := c.app.Organizations.RemoveUser(ctx, id); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.out, "Removed")
	return nil
}

func (c *cli) cmdStats(ctx context.Context) error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if c.isGym() {
		s, err := c.app.Gyms.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Total\t%d\nActive\t%d\nInactive\t%d\n", s.TotalUsers, s.ActiveUsers, s.InactiveUsers)
		return nil
	}

	s, err := c.app.Organizations.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Total\t%d\nActive\t%d\nInactive\t%d\nPending\t%d\n", s.TotalUsers, s.ActiveUsers, s.InactiveUsers, s.PendingUsers)
	return nil
}

func (c *cli) requireOrganization(cmd string) error {
	if c.isGym() {
		return fmt.Errorf("%s is only available with -kind organization", cmd)
	}
	return nil
}

func (c *cli) cmdPending(ctx context.Context) error {
	if err := c.requireOrganization("pending"); err != nil {
		return err
	}
	users, err := c.app.Organizations.PendingUsers(ctx)
	if err != nil {
		return err
	}
	c.printUsers(orgRows(users))
	return nil
}

func (c *cli) cmdApprove(ctx context.Context, args []string) error {
	if err := c.requireOrganization("approve"); err != nil {
		return err
	}
	id, err := orgUserID("approve", args)
	if err != nil {
		return err
	}
	u, err := c.app.Organizations.ApproveUser(ctx, id)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.out, "Approved %s\n", u.FullName)
	return nil
}

func (c *cli) cmdReject(ctx context.Context, args []string) error {
	if err := c.requireOrganization("reject"); err != nil {
		return err
	}
	id, err := orgUserID("reject", args)
	if err != nil {
		return err
	}
	if err := c.app.Organizations.RejectUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Rejected")
	return nil
}

func (c *cli) cmdPlans(ctx context.Context) error {
	plans, err := c.app.Plans.ActivePlans(ctx)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Fprintln(c.out, "No active plans")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tDAYS\tDESCRIPTION")
	for _, p := range plans {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%s\n", p.ID, p.Name, p.Price, p.DurationDays, p.Description)
	}
	return w.Flush()
}
