package sync

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// File は同期対象ドキュメントの1ファイルを表す
type File struct {
	Name    string
	Content string
}

// ParentChunk は回答コンテキストとして保存される親チャンクを表す
type ParentChunk struct {
	ID          int64     `json:"id"`
	SourceFile  string    `json:"sourceFile"`
	ParentIndex int       `json:"parentIndex"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	SyncedAt    time.Time `json:"syncedAt"`
}

// ChildMetadata はベクトルストアに保存する子チャンクのメタデータを表す
type ChildMetadata struct {
	SourceFile  string    `json:"sourceFile"`
	ParentID    int64     `json:"parentId"`
	ParentIndex int       `json:"parentIndex"`
	ChildIndex  int       `json:"childIndex"`
	Hash        string    `json:"hash"`
	SyncedAt    time.Time `json:"syncedAt"`
}

// VectorRecord はベクトルストアへ書き込む子チャンク1件を表す
type VectorRecord struct {
	ID       string
	Vector   []float32
	Content  string
	Metadata ChildMetadata
}

// VectorEntry はベクトルストアの一覧取得で返る1件(本文とベクトルを除く)を表す
type VectorEntry struct {
	ID       string
	Metadata ChildMetadata
}

// Result は1回の同期実行の集計を表す
type Result struct {
	RunID    uuid.UUID     `json:"runId"`
	Added    int           `json:"added"`
	Updated  int           `json:"updated"`
	Deleted  int           `json:"deleted"`
	Skipped  int           `json:"skipped"`
	Parents  int           `json:"parents"`
	Children int           `json:"children"`
	Duration time.Duration `json:"duration"`
}

// VerifyResult はストア間の整合性検査の結果を表す
type VerifyResult struct {
	Scanned int            `json:"scanned"`
	Orphans []*VectorEntry `json:"orphans,omitempty"`
}

// ChildID は子チャンクの決定的な識別子を生成する。
// 同じファイル・親・位置の組み合わせは常に同じIDになる。
func ChildID(sourceFile string, parentID int64, childIndex int) string {
	return fmt.Sprintf("chunk:%s:%d:%d", sourceFile, parentID, childIndex)
}
