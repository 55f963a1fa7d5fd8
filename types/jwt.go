package types

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims. Role is the explicit actor type; handlers
// never infer it from the user id.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
