package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"photos/internal/models"
)

// Blob layout: 4-byte magic, 1 version byte, JSON-encoded user graph.
// Future releases refuse mismatched versions explicitly instead of
// guessing at migration.
var blobMagic = []byte("PHST")

const blobVersion byte = 1

func encodeUser(u *models.User) ([]byte, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	blob := make([]byte, 0, len(blobMagic)+1+len(body))
	blob = append(blob, blobMagic...)
	blob = append(blob, blobVersion)
	blob = append(blob, body...)
	return blob, nil
}

func decodeUser(blob []byte) (*models.User, error) {
	if len(blob) < len(blobMagic)+1 {
		return nil, fmt.Errorf("blob too short (%d bytes)", len(blob))
	}
	if !bytes.Equal(blob[:len(blobMagic)], blobMagic) {
		return nil, fmt.Errorf("bad magic %q", blob[:len(blobMagic)])
	}
	if v := blob[len(blobMagic)]; v != blobVersion {
		return nil, fmt.Errorf("unsupported blob version %d (want %d)", v, blobVersion)
	}
	var u models.User
	if err := json.Unmarshal(blob[len(blobMagic)+1:], &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}
