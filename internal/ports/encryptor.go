package ports

import "context"

// Encryptor cifra valores antes de enviarlos al contrato.
// La implementación actual es un mock: no hay FHE real.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext string) ([]byte, error)

	// Proof genera la prueba de input que acompaña a los valores cifrados.
	Proof(ctx context.Context) ([]byte, error)
}
