package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aptper/pkg/redis"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "평가 스냅샷 발행",
	Long: `모든 추적 단지의 평가 스냅샷을 다시 계산해 발행합니다.

이 명령어는:
- 단지별 매매/월세 시리즈 병합 (빈 월은 직전 값으로 채움)
- 최근 N개월 평균가와 마지막 PER 계산
- apt_last_per에 (단지, 평형)당 한 행으로 upsert

Example:
  go run ./cmd/aptper publish`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Println("=== aptper Snapshot Publish ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	fmt.Printf("Trailing window: %d months\n\n", d.config.Batch.TrailingMonths)

	start := time.Now()
	stats, err := d.publisher.PublishAll(context.Background())
	if err != nil {
		return fmt.Errorf("publish snapshots: %w", err)
	}

	// 발행 후 요약 목록 캐시 무효화
	if err := d.cache.Delete(context.Background(), redis.SummaryListKey()); err != nil {
		d.logger.WithError(err).Warn("Failed to invalidate summary cache")
	}

	PrintSeparator()
	fmt.Printf("Published : %d\n", stats.Published)
	fmt.Printf("Failed    : %d\n", stats.Failed)
	fmt.Printf("Duration  : %.1fs\n", time.Since(start).Seconds())
	PrintSeparator()

	PrintSuccess("Snapshot publish completed")
	return nil
}
