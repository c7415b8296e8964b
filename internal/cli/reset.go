package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sakhi-health/sakhi/internal/db"
	"github.com/sakhi-health/sakhi/internal/security"
	"github.com/sakhi-health/sakhi/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type passwordSource func() (string, error)

// RunResetPasswordCommand replaces the password of the account behind email.
// Without prompt a temporary password is generated and printed, and the
// user has to pick a new one at the next login.
func RunResetPasswordCommand(dbPath string, email string, prompt bool, logger *logrus.Logger) error {
	if services.NormalizeAuthEmail(email) == "" {
		return fmt.Errorf("invalid email address %q", email)
	}

	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	var source passwordSource
	if prompt {
		source = promptPassword(os.Stdin, os.Stdout)
	}
	return resetPassword(database, email, source, os.Stdout)
}

func resetPassword(database *gorm.DB, email string, source passwordSource, out io.Writer) error {
	auth := services.NewAuthService(db.NewUserRepository(database))

	mustChange := source == nil
	var password string
	var err error
	if source == nil {
		password, err = security.TemporaryPassword(security.MinTemporaryPasswordLength)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
	} else {
		password, err = source()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	user, err := auth.ResetPassword(email, password, mustChange)
	switch {
	case errors.Is(err, services.ErrAuthUserNotFound):
		return fmt.Errorf("user %s not found", strings.ToLower(strings.TrimSpace(email)))
	case errors.Is(err, services.ErrWeakPassword):
		return errors.New("password must be at least 8 characters and mix upper case, lower case and digits")
	case errors.Is(err, services.ErrPasswordTooLong):
		return errors.New("password must be at most 72 bytes")
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "Password reset for %s\n", user.Email)
	if mustChange {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
		fmt.Fprintln(out, "The user must change the password on next login.")
	}
	return nil
}

func promptPassword(stdin *os.File, out io.Writer) passwordSource {
	return func() (string, error) {
		fmt.Fprint(out, "New password: ")
		first, err := readPasswordNoEcho(stdin)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		fmt.Fprint(out, "Repeat password: ")
		second, err := readPasswordNoEcho(stdin)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		if first != second {
			return "", errors.New("passwords do not match")
		}
		return strings.TrimSpace(first), nil
	}
}

func closeDatabase(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
