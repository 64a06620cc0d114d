package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"pms/internal/app/server"
	"pms/internal/domain/auth"
)

type userCreateOptions struct {
	Username    string
	Email       string
	Role        string
	Password    string
	PasswordEnv string
}

// NewUserCommand creates the user command. It exists so the first manager
// can be created when self-signup is disabled.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCommand(rootOpts))
	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &userCreateOptions{}

	cmd := &cobra.Command{
		Use:          "create",
		Short:        "Create a user account",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := opts.validate()
			if err != nil {
				return err
			}
			cfg, err := rootOpts.setup()
			if err != nil {
				return err
			}
			return withPool(cmd.Context(), cfg, func(pool *pgxpool.Pool) error {
				services, err := server.NewServices(cfg, pool)
				if err != nil {
					return err
				}
				user, err := services.Auth.CreateUser(cmd.Context(), opts.Username, password, opts.Email, opts.Role)
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "login name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Role, "role", auth.RoleEmployee, "manager or employee")
	cmd.Flags().StringVar(&opts.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&opts.PasswordEnv, "password-env", "", "read the password from this environment variable")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	cmd.MarkFlagsMutuallyExclusive("password", "password-env")

	return cmd
}

func (o *userCreateOptions) validate() (string, error) {
	if !slices.Contains(auth.Roles, o.Role) {
		return "", fmt.Errorf("invalid role %q: must be one of %v", o.Role, auth.Roles)
	}
	password := o.Password
	if o.PasswordEnv != "" {
		password = os.Getenv(o.PasswordEnv)
	}
	if password == "" {
		return "", errors.New("a password is required: use --password or --password-env")
	}
	return password, nil
}
