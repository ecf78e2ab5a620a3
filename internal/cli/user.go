package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civicvoice/complaint-service/internal/auth"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/repository"
)

// UserCmd groups actor provisioning commands.
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage actors",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

type userFlags struct {
	name       string
	email      string
	phone      string
	role       string
	department string
	city       string
}

func userCreateCmd() *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an actor and print an access token for it",
		Example: `  civicctl user create --name "Asha Patil" --email asha@example.in --role citizen
  civicctl user create --name "Roads Desk" --role department --department "Roads & Infrastructure"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := flags.actor()
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if actor.City == "" {
				actor.City = e.cfg.Lifecycle.DefaultCity
			}
			users := repository.NewUserRepository(e.pg.PoolHandle())
			if err := users.Create(cmd.Context(), actor); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			return printActor(cmd.OutOrStdout(), actor, e.tokens())
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "display name")
	cmd.Flags().StringVar(&flags.email, "email", "", "email address for status emails")
	cmd.Flags().StringVar(&flags.phone, "phone", "", "phone number for status SMS")
	cmd.Flags().StringVar(&flags.role, "role", string(domain.RoleCitizen), "citizen, department or admin")
	cmd.Flags().StringVar(&flags.department, "department", "", "department name (department role only)")
	cmd.Flags().StringVar(&flags.city, "city", "", "home city (defaults to DEFAULT_CITY)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// actor validates the flags and builds the record to insert.
func (f userFlags) actor() (*domain.Actor, error) {
	role := domain.Role(strings.ToLower(strings.TrimSpace(f.role)))
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", f.role)
	}
	name := strings.TrimSpace(f.name)
	if name == "" {
		return nil, fmt.Errorf("--name is required")
	}

	actor := &domain.Actor{
		Name:   name,
		Email:  strings.TrimSpace(f.email),
		Phone:  strings.TrimSpace(f.phone),
		Role:   role,
		City:   strings.TrimSpace(f.city),
		Active: true,
	}
	switch {
	case role == domain.RoleDepartment:
		dept := domain.Department(strings.TrimSpace(f.department))
		if !dept.Valid() {
			return nil, fmt.Errorf("department role needs a valid --department, got %q", f.department)
		}
		actor.Department = dept
	case f.department != "":
		return nil, fmt.Errorf("--department only applies to the department role")
	}
	return actor, nil
}

func printActor(w io.Writer, actor *domain.Actor, tokens *auth.TokenManager) error {
	token, expires, err := tokens.GenerateToken(actor.ID, actor.Role)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintf(w, "%s %s (%s)\n", color.New(color.FgGreen).Sprint("CREATED"), actor.Name, actor.Role)
	fmt.Fprintf(w, "  id:      %s\n", actor.ID)
	if actor.Department != "" {
		fmt.Fprintf(w, "  dept:    %s\n", actor.Department)
	}
	fmt.Fprintf(w, "  expires: %s\n", expires.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "  token:   %s\n", token)
	return nil
}
