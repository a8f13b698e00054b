package paytm

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"sort"
	"strings"

	"github.com/pankajcr7/flipkart-clone/infra/config"
)

// Paytm's checksum scheme is an opaque wire contract: the hex SHA-256 of
// the payload joined with a random salt, the salt appended, the whole
// thing AES-128-CBC encrypted under the merchant key with a fixed IV and
// base64 encoded. Both sides must produce identical bytes.
const (
	checksumIV = "@@@@&&&&####$$$$"
	saltLength = 4
)

// GenerateChecksum computes the checksum over a sorted parameter map
func GenerateChecksum(params map[string]string, merchantKey string) (string, error) {
	return GenerateChecksumFromString(paramString(params), merchantKey)
}

// GenerateChecksumFromString computes the checksum over a raw payload,
// used for signing the JSON body of order-status requests
func GenerateChecksumFromString(payload, merchantKey string) (string, error) {
	salt := config.RandomString(saltLength)
	return encrypt(calculateHash(payload, salt), merchantKey)
}

// VerifyChecksum checks an inbound checksum against the parameter map.
// The CHECKSUMHASH field itself must already be removed from params.
func VerifyChecksum(params map[string]string, merchantKey, checksum string) bool {
	return VerifyChecksumFromString(paramString(params), merchantKey, checksum)
}

// VerifyChecksumFromString checks an inbound checksum against a raw payload
func VerifyChecksumFromString(payload, merchantKey, checksum string) bool {
	decrypted, err := decrypt(checksum, merchantKey)
	if err != nil || len(decrypted) <= saltLength {
		return false
	}

	salt := decrypted[len(decrypted)-saltLength:]
	expected := calculateHash(payload, salt)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(decrypted)) == 1
}

// paramString joins the parameter values in key order with "|",
// treating the literal string "null" as empty
func paramString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, key := range keys {
		value := params[key]
		if value == "null" {
			value = ""
		}
		values = append(values, value)
	}

	return strings.Join(values, "|")
}

func calculateHash(payload, salt string) string {
	digest := sha256.Sum256([]byte(payload + "|" + salt))
	return hex.EncodeToString(digest[:]) + salt
}

func encrypt(plaintext, key string) (string, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), block.BlockSize())
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(checksumIV)).CryptBlocks(encrypted, padded)

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

func decrypt(checksum, key string) (string, error) {
	encrypted, err := base64.StdEncoding.DecodeString(checksum)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", err
	}

	if len(encrypted) == 0 || len(encrypted)%block.BlockSize() != 0 {
		return "", errors.New("checksum is not a whole number of cipher blocks")
	}

	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, []byte(checksumIV)).CryptBlocks(decrypted, encrypted)

	unpadded, err := pkcs7Unpad(decrypted, block.BlockSize())
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty ciphertext")
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, errors.New("invalid padding")
	}

	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}

	return data[:len(data)-padding], nil
}
