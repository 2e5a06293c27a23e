package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"reviewhunt-engine/internal/domain"
	"reviewhunt-engine/internal/scrape/util"
)

// SearchKey derives the key for a search: sha256 over the normalized query,
// suffixed with the star filter when one is set. Case and spacing variants of
// the same query share a key.
func SearchKey(query string, filter domain.StarFilter) string {
	raw := util.NormalizeQuery(query)
	if filter.Set() {
		raw += "_" + strconv.Itoa(int(filter)) + "star"
	}
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// CollectionKey is <identifier>_<filter|all>_<pages>.
func CollectionKey(identifier string, filter domain.StarFilter, pages int) string {
	return fmt.Sprintf("%s_%s_%d", identifier, filter.String(), pages)
}
