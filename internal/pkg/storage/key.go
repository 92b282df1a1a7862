package storage

import (
	"math/rand"
	"path"
	"strconv"
	"strings"
	"time"
)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateKey builds "<path>/<prefix>-<unixMillis>-<rand6>.<ext>" from an
// uploaded file name. path and prefix are optional.
func GenerateKey(fileName, dir, prefix string) string {
	return generateKey(fileName, dir, prefix, time.Now())
}

func generateKey(fileName, dir, prefix string, now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('-')
	for i := 0; i < 6; i++ {
		b.WriteByte(keyAlphabet[rand.Intn(len(keyAlphabet))])
	}
	if ext := strings.TrimPrefix(path.Ext(fileName), "."); ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}

	name := b.String()
	if prefix != "" {
		name = prefix + "-" + name
	}
	cleaned := strings.Trim(dir, "/")
	if cleaned == "" {
		return name
	}
	return cleaned + "/" + name
}
