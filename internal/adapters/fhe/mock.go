package fhe

// mock.go — cifrado simulado.
//
// No hay FHE real: el "ciphertext" son los bytes UTF-8 del valor, que viajan
// al contrato como `bytes` y se muestran como 0x + hex. La prueba de input es
// la constante hex("proof").

import (
	"context"
	"fmt"
	"unicode/utf8"
)

const proofSeed = "proof"

// MockEncryptor implementa ports.Encryptor.
type MockEncryptor struct{}

// NewMockEncryptor crea el encryptor simulado.
func NewMockEncryptor() *MockEncryptor {
	return &MockEncryptor{}
}

// Encrypt devuelve los bytes del valor. Falla si no es UTF-8 válido,
// igual que fallaría una codificación real.
func (MockEncryptor) Encrypt(ctx context.Context, plaintext string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !utf8.ValidString(plaintext) {
		return nil, fmt.Errorf("fhe.Encrypt: plaintext is not valid UTF-8")
	}
	return []byte(plaintext), nil
}

// Proof devuelve siempre la misma prueba.
func (MockEncryptor) Proof(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(proofSeed), nil
}
