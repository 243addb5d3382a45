package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Staff roles the console knows how to serve.
const (
	RoleNurse      = "NURSE"
	RolePharmacist = "PHARMACIST"
	RoleAdmin      = "ADMIN"
)

// Claims is the subset of the access token the console displays.
// The signature is never checked here; the backend does that on every call.
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string   `json:"preferred_username"`
	Name              string   `json:"name"`
	Role              string   `json:"role"`
	Roles             []string `json:"roles"`
	DepartmentID      int64    `json:"departmentId"`
}

// Username prefers the preferred_username claim over the subject.
func (c *Claims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}

// AllRoles returns role and roles merged, upper-cased, without duplicates.
func (c *Claims) AllRoles() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range append([]string{c.Role}, c.Roles...) {
		r = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(r), "ROLE_"))
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// HasRole reports whether the token carries role (case-insensitive). Admins have every role.
func (c *Claims) HasRole(role string) bool {
	role = strings.ToUpper(role)
	for _, r := range c.AllRoles() {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}

// Expired reports whether the token expiry is before now. Tokens without exp never expire here.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Time.Before(now)
}

// ParseClaims decodes the access token payload without verifying it.
func ParseClaims(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoSession
	}

	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Username() == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
