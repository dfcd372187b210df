package users

import "golang.org/x/crypto/bcrypt"

const passwordCost = 10

// MaxPasswordBytes is the longest input bcrypt will hash. The limit counts
// bytes, so multibyte passwords hit it with fewer characters.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares in constant time.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
