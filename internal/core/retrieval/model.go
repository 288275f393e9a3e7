package retrieval

// MatchMetadata は子チャンク検索ヒットに付随するメタデータを表す
type MatchMetadata struct {
	SourceFile  string `json:"sourceFile"`
	ParentID    int64  `json:"parentId"`
	ParentIndex int    `json:"parentIndex"`
	ChildIndex  int    `json:"childIndex"`
}

// Match はベクトル検索の子チャンクヒット1件を表す
type Match struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Similarity float64       `json:"similarity"`
	Metadata   MatchMetadata `json:"metadata"`
}

// Parent は検索ヒットの引き当て先となる親チャンクを表す
type Parent struct {
	ID         int64  `json:"id"`
	SourceFile string `json:"sourceFile"`
	Content    string `json:"content"`
}

// ContextEntry は回答コンテキストに渡す親チャンク1件を表す。
// Similarity は配下の子チャンクヒットの最大類似度を持つ。
type ContextEntry struct {
	SourceFile string  `json:"sourceFile"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}
