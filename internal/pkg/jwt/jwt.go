package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies access tokens issued by the identity system. This service
// never mints tokens; it shares the signing secret and trusts the claims.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	// Actor resolves the acting operator from verified token claims.
	Actor(claims map[string]interface{}) (string, bool)
}

type jwtService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewService(secretKey string) Service {
	return &jwtService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *jwtService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *jwtService) Actor(claims map[string]interface{}) (string, bool) {
	for _, key := range []string{"sub", "user_id", "email"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
