package shop

import (
	"errors"
	"strings"

	"github.com/dukerupert/pizzeria/internal/apperr"
	"github.com/dukerupert/pizzeria/internal/model"
	"github.com/dukerupert/pizzeria/internal/token"
)

func (s *Service) IssueAdminToken() (string, error) {
	tok, err := s.tokens.Issue()
	if err != nil {
		return "", apperr.Storage("issue admin token", err)
	}
	return tok, nil
}

// ValidateAdminToken reports whether tok is the live admin token. A denial
// is a Result, not an error.
func (s *Service) ValidateAdminToken(tok string) (token.Result, error) {
	res, err := s.tokens.Validate(tok)
	if err != nil {
		return token.Result{}, apperr.Storage("validate admin token", err)
	}
	return res, nil
}

// RequireAdmin returns an auth error unless tok validates.
func (s *Service) RequireAdmin(tok string) error {
	if tok == "" {
		return apperr.Auth("Admin token required")
	}
	res, err := s.ValidateAdminToken(tok)
	if err != nil {
		return err
	}
	if !res.OK {
		return apperr.Auth("Unauthorized access. %s", res.Reason.Message())
	}
	return nil
}

var errDuplicateUser = apperr.Conflict("Username already exists.")

func (s *Service) Register(name, password, street string) error {
	name = strings.TrimSpace(name)
	street = strings.TrimSpace(street)
	if name == "" || password == "" || street == "" {
		return apperr.Validation("Name, password, and street are required.")
	}

	// Hash before taking the users lock.
	digest := s.hasher.Hash(password)

	err := s.users.Update(func(users model.Users) error {
		if _, exists := users[name]; exists {
			return errDuplicateUser
		}
		users[name] = model.User{PasswordHash: digest, Street: street}
		return nil
	})
	if errors.Is(err, errDuplicateUser) {
		return err
	}
	if err != nil {
		return apperr.Storage("register user", err)
	}

	s.logger.Info("user registered", "user", name)
	return nil
}

// Login checks credentials and opens a new session.
func (s *Service) Login(name, password string) (*model.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, apperr.Validation("Name and password are required.")
	}

	users, err := s.users.Load()
	if err != nil {
		return nil, apperr.Storage("load users", err)
	}

	user, ok := users[name]
	// Unknown users still pay for a hash so timing does not reveal them.
	if !s.hasher.Verify(password, user.PasswordHash) || !ok {
		s.logger.Warn("failed login", "user", name)
		return nil, apperr.Auth("Invalid username or password.")
	}

	sess, err := s.sessions.Create(name, user.Street)
	if err != nil {
		return nil, apperr.Storage("create session", err)
	}
	s.logger.Info("user logged in", "user", name)
	return sess, nil
}

// Logout ends the session identified by sessionToken and returns the user
// name it belonged to.
func (s *Service) Logout(sessionToken string) (string, error) {
	sess := s.sessions.Get(sessionToken)
	if sess == nil {
		return "", apperr.Validation("No user is currently logged in.")
	}
	s.sessions.Delete(sessionToken)
	s.logger.Info("user logged out", "user", sess.Name)
	return sess.Name, nil
}

// WhoAmI returns the session for sessionToken, or nil.
func (s *Service) WhoAmI(sessionToken string) *model.Session {
	return s.sessions.Get(sessionToken)
}
