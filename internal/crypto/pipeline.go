package crypto

import "fmt"

// ClientCiphertext is a field after the client tier. It is what the browser
// or CLI sends and what the API hands back on reads.
type ClientCiphertext string

// ServerCiphertext is a field after both tiers; the only form ever persisted.
type ServerCiphertext string

// ClientTier turns plaintext into a client envelope and back.
type ClientTier interface {
	Seal(plaintext string) (ClientCiphertext, error)
	Open(ClientCiphertext) (string, error)
}

// ServerTier wraps a client envelope. It cannot accept plaintext, which is
// what keeps the layering order fixed.
type ServerTier interface {
	Seal(ClientCiphertext) (ServerCiphertext, error)
	Open(ServerCiphertext) (ClientCiphertext, error)
}

var (
	_ ClientTier = (*ClientCipher)(nil)
	_ ServerTier = (*ServerCipher)(nil)
)

// Pipeline composes both tiers: Plaintext -> ClientCiphertext -> ServerCiphertext.
// In production the two halves run in different processes; Pipeline is the
// whole path in one place, used by tools and tests.
type Pipeline struct {
	Client ClientTier
	Server ServerTier
}

func (p Pipeline) Seal(plaintext string) (ServerCiphertext, error) {
	c, err := p.Client.Seal(plaintext)
	if err != nil {
		return "", fmt.Errorf("client stage: %w", err)
	}
	s, err := p.Server.Seal(c)
	if err != nil {
		return "", fmt.Errorf("server stage: %w", err)
	}
	return s, nil
}

func (p Pipeline) Open(in ServerCiphertext) (string, error) {
	c, err := p.Server.Open(in)
	if err != nil {
		return "", fmt.Errorf("server stage: %w", err)
	}
	pt, err := p.Client.Open(c)
	if err != nil {
		return "", fmt.Errorf("client stage: %w", err)
	}
	return pt, nil
}
