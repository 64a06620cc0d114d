// Package seed loads YAML fixtures of users and goals and creates them
// through the domain services, skipping anything that already exists.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pms/internal/domain/auth"
	"pms/internal/domain/performance"
)

type Fixture struct {
	Users []User `yaml:"users"`
	Goals []Goal `yaml:"goals"`
}

// User names either an inline password or an environment variable holding
// it. Production fixtures should use passwordEnv.
type User struct {
	Username    string `yaml:"username"`
	Email       string `yaml:"email"`
	Role        string `yaml:"role"`
	Password    string `yaml:"password"`
	PasswordEnv string `yaml:"passwordEnv"`
}

type Goal struct {
	Manager     string `yaml:"manager"`
	Employee    string `yaml:"employee"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	DueDate     string `yaml:"dueDate"`
	Status      string `yaml:"status"`
}

type Users interface {
	CreateUser(ctx context.Context, username, password, email, role string) (auth.User, error)
	ListUsers(ctx context.Context, role string) ([]auth.User, error)
}

type Goals interface {
	CreateGoal(ctx context.Context, sess auth.Session, employeeID, title, description string, dueDate time.Time, status string) (performance.Goal, error)
	GoalsByManager(ctx context.Context, sess auth.Session, managerID string) ([]performance.Goal, error)
}

type Result struct {
	UsersCreated int
	UsersSkipped int
	GoalsCreated int
	GoalsSkipped int
}

func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture, rejecting unknown keys so typos surface early.
func Parse(data []byte) (Fixture, error) {
	var fx Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fx); err != nil {
		return Fixture{}, fmt.Errorf("parse seed file: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return Fixture{}, err
	}
	return fx, nil
}

func (fx Fixture) Validate() error {
	names := make(map[string]string, len(fx.Users))
	for i, u := range fx.Users {
		if strings.TrimSpace(u.Username) == "" {
			return fmt.Errorf("users[%d]: username is required", i)
		}
		if !auth.ValidRole(u.Role) {
			return fmt.Errorf("users[%d]: %w", i, auth.ErrInvalidRole)
		}
		if u.Password == "" && u.PasswordEnv == "" {
			return fmt.Errorf("users[%d]: password or passwordEnv is required", i)
		}
		names[u.Username] = u.Role
	}
	for i, g := range fx.Goals {
		if g.Title == "" || g.Manager == "" || g.Employee == "" {
			return fmt.Errorf("goals[%d]: manager, employee and title are required", i)
		}
		if role, ok := names[g.Manager]; ok && role != auth.RoleManager {
			return fmt.Errorf("goals[%d]: %s is not a manager", i, g.Manager)
		}
		if _, err := time.Parse("2006-01-02", g.DueDate); err != nil {
			return fmt.Errorf("goals[%d]: dueDate must be YYYY-MM-DD", i)
		}
	}
	return nil
}

// Apply creates the fixture's users and goals. It is safe to run repeatedly.
func Apply(ctx context.Context, fx Fixture, users Users, goals Goals) (Result, error) {
	var res Result
	for _, u := range fx.Users {
		password := u.Password
		if u.PasswordEnv != "" {
			password = os.Getenv(u.PasswordEnv)
			if password == "" {
				return res, fmt.Errorf("seed user %s: environment variable %s is empty", u.Username, u.PasswordEnv)
			}
		}
		_, err := users.CreateUser(ctx, u.Username, password, u.Email, u.Role)
		switch {
		case err == nil:
			res.UsersCreated++
		case errors.Is(err, auth.ErrDuplicateUser):
			res.UsersSkipped++
		default:
			return res, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	if len(fx.Goals) > 0 {
		if err := applyGoals(ctx, fx.Goals, users, goals, &res); err != nil {
			return res, err
		}
	}
	slog.Info("seed applied",
		"usersCreated", res.UsersCreated,
		"usersSkipped", res.UsersSkipped,
		"goalsCreated", res.GoalsCreated,
		"goalsSkipped", res.GoalsSkipped,
	)
	return res, nil
}

func applyGoals(ctx context.Context, fixtures []Goal, users Users, goals Goals, res *Result) error {
	all, err := users.ListUsers(ctx, "")
	if err != nil {
		return fmt.Errorf("seed goals: %w", err)
	}
	byName := make(map[string]auth.User, len(all))
	for _, u := range all {
		byName[u.Username] = u
	}

	for _, g := range fixtures {
		mgr, ok := byName[g.Manager]
		if !ok {
			return fmt.Errorf("seed goal %q: unknown manager %s", g.Title, g.Manager)
		}
		emp, ok := byName[g.Employee]
		if !ok {
			return fmt.Errorf("seed goal %q: unknown employee %s", g.Title, g.Employee)
		}
		sess := auth.Session{Authenticated: true, UserID: mgr.ID, Username: mgr.Username, Role: mgr.Role}

		existing, err := goals.GoalsByManager(ctx, sess, mgr.ID)
		if err != nil {
			return fmt.Errorf("seed goal %q: %w", g.Title, err)
		}
		if hasGoal(existing, emp.ID, g.Title) {
			res.GoalsSkipped++
			continue
		}
		due, _ := time.Parse("2006-01-02", g.DueDate)
		if _, err := goals.CreateGoal(ctx, sess, emp.ID, g.Title, g.Description, due, g.Status); err != nil {
			return fmt.Errorf("seed goal %q: %w", g.Title, err)
		}
		res.GoalsCreated++
	}
	return nil
}

func hasGoal(goals []performance.Goal, employeeID, title string) bool {
	for _, g := range goals {
		if g.EmployeeID == employeeID && g.Title == title {
			return true
		}
	}
	return false
}
