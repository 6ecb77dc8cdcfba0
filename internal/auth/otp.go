package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeExpired signals the OTP is missing, expired, or already consumed.
var ErrCodeExpired = errors.New("auth: verification code expired or not found")

const otpTTL = 10 * time.Minute

// otpBackend is the slice of the redis client the store uses.
type otpBackend interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// OTPStore keeps one-time email verification codes in redis with a TTL.
// Codes are single-use: any verification attempt consumes the stored code,
// so two racing attempts can never both succeed.
type OTPStore struct {
	rdb otpBackend
}

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

func otpKey(email string) string {
	return "otp:" + email
}

// Generate creates a fresh 6-digit code for the address, replacing any
// previous one.
func (s *OTPStore) Generate(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("auth: generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.rdb.Set(ctx, otpKey(email), code, otpTTL).Err(); err != nil {
		return "", fmt.Errorf("auth: store code: %w", err)
	}
	return code, nil
}

// Consume atomically removes the stored code and checks the supplied one
// against it. GETDEL keeps fetch and delete in one command; a wrong code
// burns the stored one and the user must request a new code.
func (s *OTPStore) Consume(ctx context.Context, email, code string) error {
	stored, err := s.rdb.GetDel(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return ErrCodeExpired
	}
	if err != nil {
		return fmt.Errorf("auth: fetch code: %w", err)
	}
	if stored != code {
		return ErrCodeExpired
	}
	return nil
}
