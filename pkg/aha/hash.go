package aha

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Indicator prefixes challenges using the recommended scheme.
const pbkdf2Indicator = "2$"

// challengeResponse computes the login response for a challenge,
// selecting the scheme from the challenge format.
func challengeResponse(challenge, password string) (string, error) {
	if strings.HasPrefix(challenge, pbkdf2Indicator) {
		return pbkdf2Response(challenge, password)
	}
	return md5Response(challenge, password), nil
}

// pbkdf2Response handles a "2$iter1$salt1$iter2$salt2" challenge: a
// static hash of the password under the first salt, then a dynamic
// hash of that result under the second.
func pbkdf2Response(challenge, password string) (string, error) {
	parts := strings.Split(challenge, "$")
	if len(parts) != 5 {
		return "", fmt.Errorf("malformed challenge %q", challenge)
	}
	iterations1, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed challenge %q: %v", challenge, err)
	}
	salt1, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("malformed challenge %q: %v", challenge, err)
	}
	iterations2, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", fmt.Errorf("malformed challenge %q: %v", challenge, err)
	}
	salt2, err := hex.DecodeString(parts[4])
	if err != nil {
		return "", fmt.Errorf("malformed challenge %q: %v", challenge, err)
	}

	static := pbkdf2.Key([]byte(password), salt1, iterations1, sha256.Size, sha256.New)
	dynamic := pbkdf2.Key(static, salt2, iterations2, sha256.Size, sha256.New)
	return parts[4] + "$" + hex.EncodeToString(dynamic), nil
}

// md5Response handles the legacy scheme: an MD5 digest over
// "challenge-password" encoded as UTF-16LE.
func md5Response(challenge, password string) string {
	sum := md5.Sum(utf16le(challenge + "-" + password))
	return challenge + "-" + hex.EncodeToString(sum[:])
}

func utf16le(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, len(units)*2)
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return buf
}
