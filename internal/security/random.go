package security

import (
	"crypto/rand"
	"errors"
	"fmt"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errAlphabetSize   = errors.New("alphabet must hold between 1 and 256 symbols")
)

// RandomString draws length symbols from alphabet using crypto/rand. Bytes
// that would bias the modulo are rejected and redrawn.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	symbols := []byte(alphabet)
	if len(symbols) == 0 || len(symbols) > 256 {
		return "", errAlphabetSize
	}
	if length == 0 {
		return "", nil
	}

	ceiling := 256 - 256%len(symbols)
	result := make([]byte, 0, length)
	buffer := make([]byte, length+length/2+1)
	for len(result) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, value := range buffer {
			if int(value) >= ceiling {
				continue
			}
			result = append(result, symbols[int(value)%len(symbols)])
			if len(result) == length {
				break
			}
		}
	}
	return string(result), nil
}
