// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// expires_atを過ぎたセッション行を日次バッチで削除する。
// 期限切れセッションは読み取りパスで既に不可視だが、
// 行を放置するとテーブルが無限に成長するため定期的に掃除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/resenia/internal/repository"
)

// defaultInterval はRunLoopの実行間隔（日次）。
const defaultInterval = 24 * time.Hour

// SessionCleanupJob は期限切れセッションの自動削除ジョブ。
// 冪等な削除処理を保証し、単発実行とループ実行の両方に対応する。
type SessionCleanupJob struct {
	sessionRepo repository.SessionRepository
	logger      *slog.Logger
	Interval    time.Duration
}

// NewSessionCleanupJob は新しいSessionCleanupJobを生成する。
// デフォルトの実行間隔は24時間。
func NewSessionCleanupJob(sessionRepo repository.SessionRepository, logger *slog.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessionRepo: sessionRepo,
		logger:      logger,
		Interval:    defaultInterval,
	}
}

// Run は期限切れセッションを1回削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *SessionCleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunLoop は起動直後に1回実行した後、Intervalごとに削除を繰り返す。
// コンテキストのキャンセルで停止する。
// 個々の実行の失敗はログに記録してループを継続する。
func (j *SessionCleanupJob) RunLoop(ctx context.Context) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("セッションクリーンアップに失敗しました", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("セッションクリーンアップに失敗しました", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			j.logger.Info("セッションクリーンアップループを停止します")
			return
		}
	}
}
