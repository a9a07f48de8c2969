// Package session resolves the current user identity from stored credentials.
package session

import (
	"errors"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/models"
)

// ErrNotLoggedIn means no credentials are stored and none were supplied via
// environment.
var ErrNotLoggedIn = errors.New("not logged in")

// Current returns the active session, or ErrNotLoggedIn.
func Current() (*models.Session, error) {
	creds, err := config.LoadAuth()
	if err != nil {
		return nil, err
	}
	if creds == nil || config.GetAPIKey() == "" {
		return nil, ErrNotLoggedIn
	}
	return &models.Session{
		UserID:  creds.UserID,
		Email:   creds.Email,
		Premium: creds.Premium,
	}, nil
}

// IsPremium reports whether the current session has premium entitlement.
// Not logged in counts as not premium.
func IsPremium() bool {
	s, err := Current()
	return err == nil && s.Premium
}
