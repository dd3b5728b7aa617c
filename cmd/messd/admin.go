package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/rmess/messd/internal/adapter/jsonfile"
	"github.com/rmess/messd/internal/config"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/user"
	"github.com/rmess/messd/internal/middleware"
	"github.com/rmess/messd/internal/service"
)

// runAdmin dispatches admin subcommands (reset-password, create-user, list-users).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "reset-password":
		return runAdminResetPassword(args[1:])
	case "create-user":
		return runAdminCreateUser(args[1:])
	case "list-users":
		return runAdminListUsers(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: messd admin <command> [options]

Commands:
  reset-password   Reset a user's password
  create-user      Create a new user
  list-users       List all users
  help             Show this help message

Examples:
  messd admin reset-password --username admin
  messd admin reset-password --username admin --password NewPass123!
  messd admin create-user --username cook1 --role cook
  messd admin list-users
`)
}

func loadAdminDeps() (*service.UserService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := jsonfile.Open(cfg.Store.Path, service.Bootstrap)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	return service.NewUserService(store), nil
}

func runAdminResetPassword(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	username := fs.String("username", "", "username (required)")
	password := fs.String("password", "", "new password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	newPass := *password
	if newPass == "" {
		var err error
		newPass, err = promptPassword("New password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if newPass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	userSvc, err := loadAdminDeps()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := userSvc.SetPassword(ctx, *username, newPass); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Password reset successfully for %s\n", *username)
	return nil
}

func runAdminCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := fs.String("username", "", "username (required)")
	role := fs.String("role", string(user.RoleStudent), "role: student, admin or cook")
	tenantID := fs.String("tenant", middleware.DefaultTenantID, "tenant id")
	password := fs.String("password", "", "password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	userSvc, err := loadAdminDeps()
	if err != nil {
		return err
	}

	ctx := context.Background()
	u, err := userSvc.Add(ctx, user.CreateRequest{
		Name:     *username,
		Role:     user.Role(*role),
		Password: pass,
	}, history.ActorSystem, *tenantID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User created: %s (id=%s, role=%s)\n", u.Name, u.ID, u.Role)
	return nil
}

func runAdminListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	tenantID := fs.String("tenant", middleware.DefaultTenantID, "tenant id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userSvc, err := loadAdminDeps()
	if err != nil {
		return err
	}

	ctx := context.Background()
	users, err := userSvc.ListByTenant(ctx, *tenantID)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tROLE\tBILLABLE")
	for i := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\n",
			users[i].ID, users[i].Name, users[i].Role, users[i].Billable())
	}
	return w.Flush()
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr) // newline after password input
	if err != nil {
		return "", err
	}
	return string(b), nil
}
