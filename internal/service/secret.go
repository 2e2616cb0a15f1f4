package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"

	"verify_keep/internal/webutil"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	codeMin = 100000
	codeMax = 999999

	resetTokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	resetTokenLength   = 40
)

// generateCode は [100000, 999999] の一様乱数を6桁の文字列で返します
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// generateResetToken は36進40文字のトークンを返します
func generateResetToken() (string, error) {
	return gonanoid.Generate(resetTokenAlphabet, resetTokenLength)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	return webutil.IsValidEmail(email)
}
