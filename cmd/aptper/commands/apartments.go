package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/aptper/internal/apt"
)

// aptCmd represents the apt command
var aptCmd = &cobra.Command{
	Use:   "apt",
	Short: "추적 단지 관리",
	Long: `추적 대상 아파트 단지를 조회하고 등록/삭제합니다.

Subcommands:
  list    - 추적 단지 목록
  search  - 아실에서 단지 검색
  add     - 단지 등록 (거래유형별 3행 생성)
  remove  - 단지 삭제

Example:
  go run ./cmd/aptper apt list
  go run ./cmd/aptper apt search 남산타운
  go run ./cmd/aptper apt add --name 남산타운 --py 25
  go run ./cmd/aptper apt remove --name 남산타운 --py 25`,
}

var (
	aptListCmd = &cobra.Command{
		Use:   "list",
		Short: "추적 단지 목록",
		RunE:  runAptList,
	}

	aptSearchCmd = &cobra.Command{
		Use:   "search [keyword]",
		Short: "아실에서 단지 검색",
		Args:  cobra.ExactArgs(1),
		RunE:  runAptSearch,
	}

	aptAddCmd = &cobra.Command{
		Use:   "add",
		Short: "단지 등록",
		RunE:  runAptAdd,
	}

	aptRemoveCmd = &cobra.Command{
		Use:   "remove",
		Short: "단지 삭제",
		RunE:  runAptRemove,
	}
)

var (
	aptName string
	aptPY   string
)

func init() {
	rootCmd.AddCommand(aptCmd)
	aptCmd.AddCommand(aptListCmd)
	aptCmd.AddCommand(aptSearchCmd)
	aptCmd.AddCommand(aptAddCmd)
	aptCmd.AddCommand(aptRemoveCmd)

	// Flags
	aptAddCmd.Flags().StringVar(&aptName, "name", "", "단지명 (필수)")
	aptAddCmd.Flags().StringVar(&aptPY, "py", "", "평형 (필수)")
	aptRemoveCmd.Flags().StringVar(&aptName, "name", "", "단지명 (필수)")
	aptRemoveCmd.Flags().StringVar(&aptPY, "py", "", "평형 (필수)")
}

func runAptList(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	units, err := d.repo.ListUnits(context.Background())
	if err != nil {
		return fmt.Errorf("list units: %w", err)
	}

	if len(units) == 0 {
		PrintInfo("추적 중인 단지가 없습니다")
		return nil
	}

	fmt.Printf("Tracked units (%d):\n\n", len(units))
	for _, u := range units {
		id := apt.Identity{Name: u.Name, SizeClass: u.SizeClass}
		line := id.DisplayName()
		if u.Address != "" {
			line += "  " + u.Address
		}
		if u.BuiltYM > 0 {
			line += fmt.Sprintf("  준공 %d", u.BuiltYM)
		}
		fmt.Printf("  - %s\n", line)
	}

	return nil
}

func runAptSearch(cmd *cobra.Command, args []string) error {
	keyword := args[0]

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	results, err := d.asil.SearchComplexes(context.Background(), keyword)
	if err != nil {
		return fmt.Errorf("search complexes: %w", err)
	}

	if len(results) == 0 {
		PrintInfo("검색 결과가 없습니다")
		return nil
	}

	fmt.Printf("Search results for %q (%d):\n\n", keyword, len(results))
	for _, r := range results {
		PrintKeyValue(r.Name, fmt.Sprintf("seq=%s  %s", r.Seq, r.Description), 24)
	}

	return nil
}

func runAptAdd(cmd *cobra.Command, args []string) error {
	if aptName == "" || aptPY == "" {
		return fmt.Errorf("--name and --py are required")
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx := context.Background()

	exists, err := d.repo.Exists(ctx, aptName, aptPY)
	if err != nil {
		return fmt.Errorf("check existing: %w", err)
	}
	if exists {
		return fmt.Errorf("%s (%s평) is already registered", aptName, aptPY)
	}

	results, err := d.asil.SearchComplexes(ctx, aptName)
	if err != nil {
		return fmt.Errorf("search complexes: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no matching complex for %q", aptName)
	}

	// 정확히 일치하는 이름 우선, 없으면 첫 결과
	match := results[0]
	for _, r := range results {
		if r.Name == aptName {
			match = r
			break
		}
	}

	address, _ := apt.ExtractAddress(match.Description)
	builtYM, _ := apt.ExtractBuiltYM(match.Description)

	for _, deal := range apt.AllDealTypes {
		record := &apt.Apartment{
			Name:        aptName,
			SizeClass:   aptPY,
			DealType:    deal,
			Seq:         match.Seq,
			Description: match.Description,
			Status:      1,
			Address:     address,
			BuiltYM:     builtYM,
		}
		if err := d.repo.Insert(ctx, record); err != nil {
			return fmt.Errorf("insert %s row: %w", deal.Label(), err)
		}
	}

	PrintSuccess(fmt.Sprintf("Registered %s (%s평) seq=%s", aptName, aptPY, match.Seq))
	PrintInfo("다음 refresh 실행 시 시세가 채워집니다")
	return nil
}

func runAptRemove(cmd *cobra.Command, args []string) error {
	if aptName == "" || aptPY == "" {
		return fmt.Errorf("--name and --py are required")
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx := context.Background()

	removed, err := d.repo.Delete(ctx, aptName, aptPY)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("%s (%s평) is not registered", aptName, aptPY)
	}

	if err := d.summaries.Delete(ctx, aptName, aptPY); err != nil {
		d.logger.WithError(err).Warn("Failed to delete snapshot row")
	}

	PrintSuccess(fmt.Sprintf("Removed %s (%s평): %d rows", aptName, aptPY, removed))
	return nil
}
