package database

import (
	"context"
	"fmt"

	"github.com/tablemate-app/tablemate/internal/auth"
	"github.com/tablemate-app/tablemate/internal/models"
)

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := `
	SELECT id, email, password, display_name, gender, status, day_preference, is_admin
	FROM users
	WHERE email = $1
	`
	err := DB.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.DisplayName,
		&u.Gender, &u.Status, &u.DayPreference, &u.IsAdmin,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AuthenticateAdmin verifies credentials and returns a signed JWT carrying
// the admin claim. Only admins may trigger match runs by hand.
func AuthenticateAdmin(ctx context.Context, email, password string) (string, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("user not found or db error: %w", err)
	}

	match, err := auth.ComparePasswordAndHash(password, user.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}
	if !user.IsAdmin {
		return "", fmt.Errorf("user is not an admin")
	}

	token, err := auth.CreateJWT(user.ID.String(), true)
	if err != nil {
		return "", fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, nil
}
