package room

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleOwner = "owner"
	RoleUser  = "user"
)

type Claims struct {
	RoomId   string   `json:"room_id"`
	MemberId string   `json:"member_id"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}

	return false
}

func (s *service) GenerateAccessToken(roomId, memberId string, roles ...string) (string, error) {
	now := s.now()
	claims := Claims{
		RoomId:   roomId,
		MemberId: memberId,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

func (s *service) ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.RoomId == "" || claims.MemberId == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
