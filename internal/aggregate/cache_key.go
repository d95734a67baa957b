package aggregate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"jobpulse/internal/domain"
)

type searchKeyInput struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
}

func normalizeKeyValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

func searchCacheKey(req domain.SearchRequest) string {
	in := searchKeyInput{
		Query:    normalizeKeyValue(req.Query),
		Location: normalizeKeyValue(req.Location),
		Limit:    req.Limit,
	}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "jobs:search:" + hex.EncodeToString(sum[:])
}
