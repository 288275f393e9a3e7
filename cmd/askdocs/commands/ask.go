package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// AskAction は質問に対してドキュメントを根拠とした回答を生成する
func AskAction(ctx context.Context, cmd *cli.Command) error {
	question := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("質問を指定してください (例: askdocs ask \"デプロイ手順は?\")")
	}

	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	answer, err := app.Container.Composer.Compose(ctx, question)
	if err != nil {
		return fmt.Errorf("回答の生成に失敗しました: %w", err)
	}

	fmt.Println(answer.Text)

	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("参照ドキュメント:")
		for _, source := range answer.Sources {
			fmt.Printf("  - %s (類似度: %.2f)\n", source.SourceFile, source.Similarity)
		}
	}

	return nil
}
