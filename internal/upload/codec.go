package upload

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"unicode/utf8"
)

// EncodeName makes an arbitrary UTF-8 file name storage safe by hex encoding
// everything before the extension. The extension is kept verbatim.
func EncodeName(name string) string {
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	return hex.EncodeToString([]byte(stem)) + ext
}

// DecodeName reverses EncodeName.
func DecodeName(encoded string) (string, error) {
	ext := filepath.Ext(encoded)
	stem := encoded[:len(encoded)-len(ext)]

	raw, err := hex.DecodeString(stem)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: decoded name is not utf-8", ErrInvalidName)
	}
	return string(raw) + ext, nil
}
