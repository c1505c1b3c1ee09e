// Package credentials hashes participant passwords and mints the
// identity token that ends up in the badge QR code.
package credentials

import (
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
)

// Fixed namespace so token minting stays deterministic across restarts.
var tokenNamespace = uuid.MustParse("b4c1f6de-52a7-4c3e-9d18-2f0e8a6b7c41")

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// MintToken derives the identity token from name and email. The same
// inputs always yield the same token; email uniqueness makes the
// token unique across participants.
func MintToken(name, email string) string {
	return uuid.NewSHA1(tokenNamespace, []byte(name+"\n"+email)).String()
}

// BadgePNG renders the identity token as a scannable QR code.
func BadgePNG(token string, size int) ([]byte, error) {
	return qrcode.Encode(token, qrcode.Medium, size)
}
