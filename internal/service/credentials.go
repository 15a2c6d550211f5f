package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
)

const (
	otpAlphabet        = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
	defaultOTPLength   = 10
	usernameFragment   = 6
	usernameSuffixMin  = 1000
	usernameSuffixSpan = 9000
	emptyFragment      = "pt"
)

// passwordHashCost is the bcrypt cost for stored credentials.
var passwordHashCost = 12

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// passwordHashError reports bcrypt's 72 byte input limit as a client error.
func passwordHashError(err error) *appErrors.Error {
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return appErrors.Clone(appErrors.ErrValidation, "password must not exceed 72 bytes")
	}
	return appErrors.Internal(err, "failed to hash password")
}

func checkPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// generateOTP returns a random password drawn from an alphabet without
// look-alike characters.
func generateOTP(length int) (string, error) {
	if length <= 0 {
		length = defaultOTPLength
	}
	max := big.NewInt(int64(len(otpAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(otpAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// generatePatientUsername builds first6.last6NNNN from the ASCII letters of the
// name parts. Uniqueness is left to the store.
func generatePatientUsername(firstName, lastName string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(usernameSuffixSpan))
	if err != nil {
		return "", fmt.Errorf("generate username suffix: %w", err)
	}
	return fmt.Sprintf("%s.%s%d", nameFragment(firstName), nameFragment(lastName), usernameSuffixMin+n.Int64()), nil
}

func nameFragment(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
			if b.Len() == usernameFragment {
				break
			}
		}
	}
	if b.Len() == 0 {
		return emptyFragment
	}
	return b.String()
}
