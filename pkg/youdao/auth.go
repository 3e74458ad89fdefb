package youdao

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AddAuthParams signs a request form in place using the service's "v3"
// scheme: a random salt, the current unix time, and a SHA-256 digest over
// appKey + truncated input + salt + curtime + appSecret. The signed input
// is the "q" field when present, otherwise the "img" field.
func AddAuthParams(appKey, appSecret string, params url.Values) {
	input := params.Get("q")
	if input == "" {
		input = params.Get("img")
	}

	salt := uuid.NewString()
	curtime := strconv.FormatInt(time.Now().Unix(), 10)

	params.Set("appKey", appKey)
	params.Set("salt", salt)
	params.Set("curtime", curtime)
	params.Set("signType", "v3")
	params.Set("sign", Sign(appKey, appSecret, input, salt, curtime))
}

// Sign computes the v3 request signature.
func Sign(appKey, appSecret, input, salt, curtime string) string {
	sum := sha256.Sum256([]byte(appKey + truncate(input) + salt + curtime + appSecret))
	return hex.EncodeToString(sum[:])
}

// truncate shortens long inputs the way the API expects: inputs over 20
// characters are reduced to the first 10, the character count, and the
// last 10.
func truncate(q string) string {
	runes := []rune(q)
	size := len(runes)
	if size <= 20 {
		return q
	}
	return string(runes[:10]) + strconv.Itoa(size) + string(runes[size-10:])
}
