package sync

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ContentHash は trim 済み本文の SHA-256 ハッシュを16進文字列で返す。
// 前後の空白だけが変わったファイルは変更として扱わない。
func ContentHash(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(strings.TrimSpace(content))))
}
