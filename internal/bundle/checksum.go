package bundle

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Checksum returns the SHA-512 digest of the file's contents.
func Checksum(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	defer file.Close()

	hash := sha512.New()
	if _, err = io.Copy(hash, file); err != nil {
		return nil, fmt.Errorf("failed to calculate checksum of file %q: %w", path, err)
	}

	return hash.Sum(nil), nil
}

// ChecksumHex returns the SHA-512 digest of the file's contents as a
// hex string, the form stored in installation records.
func ChecksumHex(path string) (string, error) {
	sum, err := Checksum(path)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(sum), nil
}
