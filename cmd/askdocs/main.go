package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/askdocs/cmd/askdocs/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}

	app := &cli.Command{
		Name:  "askdocs",
		Usage: "社内ドキュメント向け質問応答システム (parent-child RAG)",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "ドキュメントをストアへ差分同期",
				Flags: []cli.Flag{
					envFlag,
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "同期前に全ストアをクリアしてフル同期を実行",
					},
					&cli.StringFlag{
						Name:  "git-url",
						Usage: "ローカルディレクトリの代わりにGitリポジトリを同期",
					},
				},
				Action: commands.SyncAction,
			},
			{
				Name:      "ask",
				Usage:     "ドキュメントを根拠に質問へ回答",
				ArgsUsage: "<質問>",
				Flags: []cli.Flag{
					envFlag,
				},
				Action: commands.AskAction,
			},
			{
				Name:  "source",
				Usage: "同期済みドキュメント管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "同期済みファイル一覧を表示",
						Flags: []cli.Flag{
							envFlag,
						},
						Action: commands.SourceListAction,
					},
					{
						Name:  "show",
						Usage: "ファイルの親チャンクを表示",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "name",
								Usage:    "ファイル名 (同期時の相対パス)",
								Required: true,
							},
						},
						Action: commands.SourceShowAction,
					},
				},
			},
			{
				Name:   "verify",
				Usage:  "ストア間の整合性を検査",
				Flags:  []cli.Flag{envFlag},
				Action: commands.VerifyAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
