package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const (
	defaultKeyBytesLen = 32

	// HS256 needs at least 256 bits of key
	minKeyBytesLen = 32
)

// Print random hex encoded key suitable for SECRET_KEY
func main() {
	fs := pflag.NewFlagSet("gensecret", pflag.ExitOnError)
	n := fs.IntP("bytes", "n", defaultKeyBytesLen, "Key length in bytes")
	_ = fs.Parse(os.Args[1:])

	key, err := generate(rand.Reader, *n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(key)
}

func generate(r io.Reader, n int) (string, error) {
	if n < minKeyBytesLen {
		return "", errors.New("key is too short, use at least 32 bytes")
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
