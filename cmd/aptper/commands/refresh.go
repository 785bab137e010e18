package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aptper/internal/updater"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "시세 시리즈 증분 갱신",
	Long: `모든 추적 단지의 월간 시세 시리즈 꼬리를 다시 받습니다.

이 명령어는:
- status=1인 모든 (단지, 평형) 목록 조회
- 거래유형별(매매/전세/월세)로 기준 창 이후 구간을 아실에서 재수집
- 기준 창 이전 구간은 그대로 보존

Example:
  go run ./cmd/aptper refresh
  go run ./cmd/aptper refresh --fast
  go run ./cmd/aptper refresh --meta`,
	RunE: runRefresh,
}

var (
	refreshFast bool
	refreshMeta bool
)

func init() {
	rootCmd.AddCommand(refreshCmd)

	// Flags
	refreshCmd.Flags().BoolVar(&refreshFast, "fast", false, "빠른 갱신 (180일 창)")
	refreshCmd.Flags().BoolVar(&refreshMeta, "meta", false, "주소/준공년월 백필 포함")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	fmt.Println("=== aptper Series Refresh ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	windowDays := d.config.Batch.RefreshWindowDays
	if refreshFast {
		windowDays = d.config.Batch.RefreshFastWindowDays
	}

	fmt.Printf("Window: %d days, Workers: %d\n\n", windowDays, d.config.Batch.Workers)

	start := time.Now()
	results, err := d.updater.RefreshAll(context.Background(), updater.Config{
		Workers:    d.config.Batch.Workers,
		WindowDays: windowDays,
	})
	if err != nil {
		return fmt.Errorf("refresh series: %w", err)
	}

	updated, unchanged, failed := 0, 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			PrintError(fmt.Sprintf("%s (%s평): %v", r.Name, r.SizeClass, r.Error))
			continue
		}
		updated += r.Updated
		unchanged += r.Unchanged
	}

	fmt.Println()
	PrintSeparator()
	fmt.Printf("Units     : %d\n", len(results))
	fmt.Printf("Updated   : %d rows\n", updated)
	fmt.Printf("Unchanged : %d rows\n", unchanged)
	fmt.Printf("Failed    : %d units\n", failed)
	fmt.Printf("Duration  : %.1fs\n", time.Since(start).Seconds())
	PrintSeparator()

	if refreshMeta {
		fmt.Println("\nBackfilling address/built metadata...")
		n, err := d.updater.BackfillMeta(context.Background())
		if err != nil {
			return fmt.Errorf("backfill meta: %w", err)
		}
		PrintSuccess(fmt.Sprintf("Meta backfill: %d rows updated", n))
	}

	PrintSuccess("Series refresh completed")
	return nil
}
