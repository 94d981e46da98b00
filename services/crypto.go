package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"aurora/config"
)

const (
	keyLength  = 32 // AES-256
	saltLength = 16
	iterations = 100000
)

// encryptedNote holds an encrypted mood note with its salt and nonce.
type encryptedNote struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func deriveNoteKey(salt []byte) []byte {
	cfg := config.GetConfig()
	return pbkdf2.Key([]byte(cfg.ServerSecret), salt, iterations, keyLength, sha256.New)
}

// EncryptNote encrypts a mood note using AES-256-GCM with a key derived
// from the server secret. Notes are personal reflections; they never sit
// in the database as plaintext. An empty note encrypts to nil.
func EncryptNote(note string) ([]byte, error) {
	if note == "" {
		return nil, nil
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(deriveNoteKey(salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	enc := encryptedNote{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, []byte(note), nil),
	}
	return json.Marshal(enc)
}

// DecryptNote reverses EncryptNote. A nil or empty blob decrypts to the
// empty string.
func DecryptNote(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}

	var enc encryptedNote
	if err := json.Unmarshal(blob, &enc); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveNoteKey(enc.Salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(enc.Nonce) != gcm.NonceSize() {
		return "", errors.New("invalid nonce size")
	}

	plaintext, err := gcm.Open(nil, enc.Nonce, enc.Ciphertext, nil)
	if err != nil {
		return "", errors.New("decryption failed - wrong server secret or corrupted data")
	}
	return string(plaintext), nil
}
