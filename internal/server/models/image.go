package models

import (
	"encoding/json"
	"fmt"
)

// Image is an uploaded picture attached to an account.
//
// The content lives either inline in Data or in the blob store under
// StorageKey; exactly one of them is set once the image is persisted.
type Image struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	// Data is serialized as base64 by encoding/json.
	Data       []byte `json:"data,omitempty"`
	Size       int64  `json:"size"`
	StorageKey string `json:"storage_key,omitempty"`
}

// Clone returns a copy of the image that does not share its Data buffer.
func (i Image) Clone() Image {
	if i.Data != nil {
		i.Data = append([]byte(nil), i.Data...)
	}
	return i
}

// EncodeImages serializes images into the text blob stored with the account.
// An empty batch is stored as the empty string, meaning "unset".
func EncodeImages(images []Image) (string, error) {
	if len(images) == 0 {
		return "", nil
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

// DecodeImages is the inverse of EncodeImages.
func DecodeImages(text string) ([]Image, error) {
	if text == "" {
		return nil, nil
	}
	var images []Image
	if err := json.Unmarshal([]byte(text), &images); err != nil {
		return nil, err
	}
	return images, nil
}
