package updater

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/wonny/aptper/internal/apt"
	"github.com/wonny/aptper/internal/series"
	"github.com/wonny/aptper/pkg/logger"
)

type fakeStore struct {
	mu      sync.Mutex
	units   []apt.TrackedUnit
	records map[string]*apt.Apartment // key: name/py/deal
	saved   map[int64]series.Series
	descs   []apt.DescriptionRow
	meta    map[int64]struct {
		address string
		builtYM int
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string]*apt.Apartment),
		saved:   make(map[int64]series.Series),
		meta: make(map[int64]struct {
			address string
			builtYM int
		}),
	}
}

func storeKey(name, py string, deal apt.DealType) string {
	return name + "/" + py + "/" + string(deal)
}

func (f *fakeStore) ListTracked(_ context.Context) ([]apt.TrackedUnit, error) {
	return f.units, nil
}

func (f *fakeStore) GetRecord(_ context.Context, name, py string, deal apt.DealType) (*apt.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[storeKey(name, py, deal)], nil
}

func (f *fakeStore) SaveTrend(_ context.Context, id int64, trend series.Series) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[id] = trend
	return nil
}

func (f *fakeStore) ListDescriptions(_ context.Context) ([]apt.DescriptionRow, error) {
	return f.descs, nil
}

func (f *fakeStore) UpdateMeta(_ context.Context, id int64, address string, builtYM int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meta[id] = struct {
		address string
		builtYM int
	}{address, builtYM}
	return nil
}

type fakeSource struct {
	mu      sync.Mutex
	data    map[string]series.Series // key: seq/deal/year
	failSeq string
	calls   int
}

func sourceKey(seq string, deal apt.DealType, year int) string {
	return seq + "/" + string(deal) + "/" + strconv.Itoa(year)
}

func (f *fakeSource) FetchTransactions(_ context.Context, seq, _ string, year int, deal apt.DealType) (series.Series, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if seq == f.failSeq {
		return nil, errors.New("source down")
	}
	return f.data[sourceKey(seq, deal, year)], nil
}

func newTestUpdater(store *fakeStore, source *fakeSource) *Updater {
	u := NewUpdater(store, source, logger.Nop())
	u.now = func() time.Time {
		return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	}
	return u
}

func TestRefreshAll(t *testing.T) {
	store := newFakeStore()
	store.units = []apt.TrackedUnit{
		{Name: "남산타운", SizeClass: "25", Seq: "10423"},
		{Name: "래미안슈르", SizeClass: "34", Seq: "20911"},
	}
	id := int64(1)
	for _, unit := range store.units {
		for _, deal := range apt.AllDealTypes {
			store.records[storeKey(unit.Name, unit.SizeClass, deal)] = &apt.Apartment{
				ID:        id,
				Name:      unit.Name,
				SizeClass: unit.SizeClass,
				DealType:  deal,
				Seq:       unit.Seq,
				Trend:     series.Series{obs(202201, 40000, 1)},
			}
			id++
		}
	}

	source := &fakeSource{data: map[string]series.Series{}}
	for _, seq := range []string{"10423", "20911"} {
		for _, deal := range apt.AllDealTypes {
			source.data[sourceKey(seq, deal, 2024)] = series.Series{obs(202403, 55000, 2)}
		}
	}

	u := newTestUpdater(store, source)
	results, err := u.RefreshAll(context.Background(), Config{Workers: 2, WindowDays: 365})
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("unit %s/%s error = %v", r.Name, r.SizeClass, r.Error)
		}
		if r.Updated != 3 {
			t.Errorf("unit %s/%s updated = %d, want 3", r.Name, r.SizeClass, r.Updated)
		}
	}

	// 6행 모두 저장됐고, 보존 구간 + 새 꼬리를 담고 있어야 한다
	if len(store.saved) != 6 {
		t.Fatalf("saved %d trends, want 6", len(store.saved))
	}
	want := series.Series{obs(202201, 40000, 1), obs(202403, 55000, 2)}
	for rowID, trend := range store.saved {
		if !trend.Equal(want) {
			t.Errorf("row %d trend = %v, want %v", rowID, trend, want)
		}
	}

	// 단위 2 × 유형 3 × 연도 2 (2023, 2024)
	if source.calls != 12 {
		t.Errorf("source calls = %d, want 12", source.calls)
	}
}

func TestRefreshAllUnchangedSkipsSave(t *testing.T) {
	store := newFakeStore()
	store.units = []apt.TrackedUnit{{Name: "남산타운", SizeClass: "25", Seq: "10423"}}
	for i, deal := range apt.AllDealTypes {
		store.records[storeKey("남산타운", "25", deal)] = &apt.Apartment{
			ID:    int64(i + 1),
			Trend: series.Series{obs(202201, 40000, 1)},
		}
	}

	// 소스가 빈 결과만 주면 보존 구간만 남아 기존과 동일하다
	source := &fakeSource{data: map[string]series.Series{}}

	u := newTestUpdater(store, source)
	results, err := u.RefreshAll(context.Background(), Config{Workers: 1, WindowDays: 365})
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	if results[0].Unchanged != 3 || results[0].Updated != 0 {
		t.Errorf("result = %+v, want 3 unchanged", results[0])
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d trends, want 0", len(store.saved))
	}
}

func TestRefreshAllIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	store.units = []apt.TrackedUnit{
		{Name: "고장단지", SizeClass: "25", Seq: "bad"},
		{Name: "정상단지", SizeClass: "34", Seq: "good"},
	}
	store.records[storeKey("고장단지", "25", apt.DealSale)] = &apt.Apartment{ID: 1}
	for i, deal := range apt.AllDealTypes {
		store.records[storeKey("정상단지", "34", deal)] = &apt.Apartment{ID: int64(10 + i)}
	}

	source := &fakeSource{
		failSeq: "bad",
		data: map[string]series.Series{
			sourceKey("good", apt.DealSale, 2024):    {obs(202403, 55000, 2)},
			sourceKey("good", apt.DealJeonse, 2024):  {obs(202403, 30000, 1)},
			sourceKey("good", apt.DealMonthly, 2024): {obs(202403, 150, 1)},
		},
	}

	u := newTestUpdater(store, source)
	results, err := u.RefreshAll(context.Background(), Config{Workers: 1, WindowDays: 365})
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	byName := map[string]FetchResult{}
	for _, r := range results {
		byName[r.Name] = r
	}

	if byName["고장단지"].Error == nil {
		t.Error("failing unit should report an error")
	}
	if byName["정상단지"].Error != nil {
		t.Errorf("healthy unit error = %v", byName["정상단지"].Error)
	}
	if byName["정상단지"].Updated != 3 {
		t.Errorf("healthy unit updated = %d, want 3", byName["정상단지"].Updated)
	}
}

func TestRefreshAllMissingRow(t *testing.T) {
	store := newFakeStore()
	store.units = []apt.TrackedUnit{{Name: "남산타운", SizeClass: "25", Seq: "10423"}}
	// 매매 행만 존재
	store.records[storeKey("남산타운", "25", apt.DealSale)] = &apt.Apartment{ID: 1}

	source := &fakeSource{data: map[string]series.Series{
		sourceKey("10423", apt.DealSale, 2024): {obs(202403, 55000, 2)},
	}}

	u := newTestUpdater(store, source)
	results, err := u.RefreshAll(context.Background(), Config{Workers: 1, WindowDays: 365})
	if err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	r := results[0]
	if r.Missing != 2 || r.Updated != 1 || r.Error != nil {
		t.Errorf("result = %+v, want 2 missing / 1 updated / no error", r)
	}
}

func TestBackfillMeta(t *testing.T) {
	store := newFakeStore()
	store.descs = []apt.DescriptionRow{
		{ID: 1, Description: "서울 중구 신당동 / 02년05월 / 5152세대 / 아파트"},
		{ID: 2, Description: "경기 수원시 영통구 원천동 / 19년05월 / 2231세대"},
		{ID: 3, Description: "추출 불가 텍스트"},
	}

	u := newTestUpdater(store, &fakeSource{})
	updated, err := u.BackfillMeta(context.Background())
	if err != nil {
		t.Fatalf("BackfillMeta() error = %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	if m := store.meta[1]; m.address != "서울 중구" || m.builtYM != 200205 {
		t.Errorf("row 1 meta = %+v", m)
	}
	if m := store.meta[2]; m.address != "수원시 영통구" || m.builtYM != 201905 {
		t.Errorf("row 2 meta = %+v", m)
	}
	if _, ok := store.meta[3]; ok {
		t.Error("row 3 should not have been updated")
	}
}
