package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer keeps a secret attribute value sealed in a memguard enclave
// between the moment it is typed and the moment a record is rendered.
//
// memguard.Enclave has no Destroy method. Destroy only drops the reference;
// memguard.Purge() at process exit wipes whatever is still allocated.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer seals data into an encrypted enclave.
// memguard wipes the source slice, so callers must not reuse data.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		// memguard refuses empty enclaves; an empty secret stays nil
		return &SecureBuffer{}, nil
	}

	return &SecureBuffer{
		enclave: memguard.NewEnclave(data),
	}, nil
}

// NewSecureBufferFromString seals a string value.
func NewSecureBufferFromString(value string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(value))
}

// Open decrypts and returns the protected data in a locked buffer.
// The caller MUST call Destroy() on the returned LockedBuffer when done.
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	secret := locked.Bytes()
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return memguard.NewBuffer(0), nil
	}

	return s.enclave.Open()
}

// String opens the enclave and returns a plaintext copy. It is used at the
// single point where a secret is written into an LDIF record.
func (s *SecureBuffer) String() (string, error) {
	locked, err := s.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	return string(locked.Bytes()), nil
}

// Empty reports whether the buffer holds no data
func (s *SecureBuffer) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.destroyed || s.enclave == nil || s.enclave.Size() == 0
}

// Destroy marks this SecureBuffer as destroyed and prevents further use.
// It is idempotent. After Destroy(), Open() returns an empty buffer.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	s.enclave = nil
	s.destroyed = true
}
