package util

import (
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erd-lab/procatalog/pkg/config"
	"github.com/erd-lab/procatalog/pkg/logutils"
)

type (
	JWTClaims struct {
		AccountID   uint   `json:"ai"`
		Email       string `json:"em"`
		IsStaff     bool   `json:"st"`
		IsSuperuser bool   `json:"su"`
		Refresh     bool   `json:"rf"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		AccountID   uint   `json:"accountID"`
		Email       string `json:"email"`
		IsStaff     bool   `json:"isStaff"`
		IsSuperuser bool   `json:"isSuperuser"`
	}
)

type TokenManager struct {
	accessSecret    string
	refreshSecret   string
	accessTokenTTL  int
	refreshTokenTTL int
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		auth := config.GetConfig().Auth
		tokenMgr = NewTokenManager(auth.AccessTokenSecret, auth.RefreshTokenSecret,
			auth.AccessTokenExpiryHour, auth.RefreshTokenExpiryHour)
	})
	return tokenMgr
}

func NewTokenManager(accessSecret, refreshSecret string, accessTokenTTL, refreshTokenTTL int) *TokenManager {
	return &TokenManager{
		accessSecret:    accessSecret,
		refreshSecret:   refreshSecret,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (tm *TokenManager) createToken(msg *JWTMessage, secret string, ttl int, refresh bool) (string, error) {
	expiresAt := time.Now().Add(time.Hour * time.Duration(ttl))

	claims := &JWTClaims{
		AccountID:   msg.AccountID,
		Email:       msg.Email,
		IsStaff:     msg.IsStaff,
		IsSuperuser: msg.IsSuperuser,
		Refresh:     refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CreateTokens creates a new access token and a new refresh token
func (tm *TokenManager) CreateTokens(msg *JWTMessage) (
	accessToken string, refreshToken string, err error) {
	accessToken, err = tm.createToken(msg, tm.accessSecret, tm.accessTokenTTL, false)
	if err != nil {
		logutils.Log.Error(err)
		return "", "", err
	}
	refreshToken, err = tm.createToken(msg, tm.refreshSecret, tm.refreshTokenTTL, true)
	if err != nil {
		logutils.Log.Error(err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (tm *TokenManager) checkToken(requestToken, secret string) (JWTMessage, bool, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	msg := JWTMessage{
		AccountID:   claims.AccountID,
		Email:       claims.Email,
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}
	return msg, claims.Refresh, err
}

// CheckAccessToken validates an access token and rejects refresh tokens
// presented in its place.
func (tm *TokenManager) CheckAccessToken(requestToken string) (JWTMessage, error) {
	msg, refresh, err := tm.checkToken(requestToken, tm.accessSecret)
	if err != nil {
		return msg, err
	}
	if refresh {
		return msg, jwt.ErrTokenInvalidClaims
	}
	return msg, nil
}

// CheckRefreshToken validates a refresh token.
func (tm *TokenManager) CheckRefreshToken(requestToken string) (JWTMessage, error) {
	msg, refresh, err := tm.checkToken(requestToken, tm.refreshSecret)
	if err != nil {
		return msg, err
	}
	if !refresh {
		return msg, jwt.ErrTokenInvalidClaims
	}
	return msg, nil
}
