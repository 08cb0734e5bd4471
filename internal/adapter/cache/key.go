package cache

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Key derives the cache key for a text checked by provider/model.
func Key(provider, model, text string) string {
	data := make([]byte, 0, len(provider)+len(model)+len(text)+2)
	data = append(data, provider...)
	data = append(data, 0)
	data = append(data, model...)
	data = append(data, 0)
	data = append(data, text...)
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16])
}
