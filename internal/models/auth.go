package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims is the JWT payload for administrative bearer tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
