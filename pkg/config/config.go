package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// OpenAI設定（Embeddings + LLM）
	OpenAI OpenAIConfig

	// チャンク分割設定
	Chunking ChunkingConfig

	// 検索設定
	Search SearchConfig

	// 回答生成設定
	Answer AnswerConfig

	// ドキュメントソース設定
	Docs DocsConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN は pgx 用の接続文字列を返します
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// OpenAIConfig はOpenAI API設定（Embeddings + LLM）
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	LLMModel           string
}

// ChunkingConfig は親子チャンク分割の設定
type ChunkingConfig struct {
	ChildSize          int     // 子チャンクの目標サイズ（ルーン数）
	ChildOverlapFactor float64 // 子チャンクのオーバーラップ係数
	ParentSizeFactor   float64 // 親チャンクサイズの倍率
}

// SearchConfig はベクトル検索の設定
type SearchConfig struct {
	TopK          int     // 子チャンク検索の最大ヒット数
	MinSimilarity float64 // 類似度の下限
}

// AnswerConfig は回答生成の設定
type AnswerConfig struct {
	NoInfoMessage     string // 関連情報が見つからない場合の応答（空ならデフォルト）
	ContextTokenLimit int    // コンテキストブロックのトークン上限（0で無効）
}

// DocsConfig はドキュメントソースの設定
type DocsConfig struct {
	Dir         string // 同期対象のドキュメントディレクトリ
	GitCloneDir string // gitソースのクローン先
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "askdocs"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "askdocs"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			LLMModel:           getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
		},
		Chunking: ChunkingConfig{
			ChildSize:          getEnvAsInt("CHUNK_CHILD_SIZE", 300),
			ChildOverlapFactor: getEnvAsFloat("CHUNK_CHILD_OVERLAP_FACTOR", 0.2),
			ParentSizeFactor:   getEnvAsFloat("CHUNK_PARENT_SIZE_FACTOR", 4),
		},
		Search: SearchConfig{
			TopK:          getEnvAsInt("SEARCH_TOP_K", 5),
			MinSimilarity: getEnvAsFloat("SEARCH_MIN_SIMILARITY", 0.35),
		},
		Answer: AnswerConfig{
			NoInfoMessage:     getEnv("ANSWER_NO_INFO_MESSAGE", ""),
			ContextTokenLimit: getEnvAsInt("ANSWER_CONTEXT_TOKEN_LIMIT", 4000),
		},
		Docs: DocsConfig{
			Dir:         getEnv("DOCS_DIR", "./docs"),
			GitCloneDir: getEnv("GIT_CLONE_DIR", "/var/lib/askdocs/repos"),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
