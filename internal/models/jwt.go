package models

// JWTClaims holds the claims extracted from a verified bearer token
type JWTClaims struct {
	Sub      string
	Username string
	Iss      string
	Exp      int64
	Iat      int64
}
