package main

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"sales-ledger-reconciler/internal/extractor"
	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/rulesets"

	"github.com/shopspring/decimal"
)

// ledgerColumns is the layout of the accounting system's general ledger export.
var ledgerColumns = []string{
	"계정코드", rulesets.ColumnAccountName, rulesets.ColumnDate, "NO", rulesets.ColumnNarration,
	"거래처코드", rulesets.ColumnCounterparty, rulesets.ColumnDebit, rulesets.ColumnCredit,
	rulesets.ColumnBoundary, "작성사원명",
}

var (
	plateLetters = []string{"가", "나", "다", "라", "마", "거", "너", "더", "러", "머", "버", "서", "어", "저", "고", "노", "도", "로", "모", "보", "소", "오", "조", "구", "누", "두", "루", "무", "부", "수", "우", "주", "하", "허", "호"}
	regions      = []string{"서울", "경기", "인천", "부산", "대구", "광주", "대전"}
	channels     = []string{"직영", "옥션", "위탁", "수출"}
	writers      = []string{"김민수", "이서연", "박지훈", "최유진"}
	departments  = []string{"A100", "A200", "B100"}
)

// phrases are narration fragments per rule-set key; some hit the category rules.
var phrases = map[string][]string{
	"v1":  {"상품매출", "상품매출 정산"},
	"v2":  {"원상회복비", "원상회복비 청구"},
	"v3":  {"보관료", "차옥션 연회비", "낙찰취소 위약금", "성능책임보험", "잡이익", "KB국민카드 수수료", "인센티브", "캐롯 금융수수료", "용역료"},
	"v4":  {"매도비"},
	"v5":  {"낙찰수수료", "낙찰취소 수수료", "자산 낙찰수수료", "외부 출품 낙찰수수료"},
	"v6":  {"위탁판매수수료", "위탁판매취소", "외부위탁 수수료"},
	"v7":  {"상품화 광택", "상품화 판금", "상품화 외 2건"},
	"v8":  {"평가사수수료"},
	"v11": {"리본케어", "리본케어 환불", "홈서비스", "탁송", "판매취소 탁송"},
}

var merchandisingVendors = []string{"디비손해보험 주식회사", "(주)레드캡투어", "카닥", "오토맥스"}

var otherRevenueAccounts = []string{"기타매출(리본케어)", "기타매출(리본케어플러스)", "기타매출(엔카홈서비스)", "기타매출(탁송비)"}

// LedgerSpec describes one generated ledger file.
type LedgerSpec struct {
	Key     string
	Keyword string
	Account string
	Bracket bool
}

// FileName returns a base name that dispatches to the ledger's rule-set.
func (s LedgerSpec) FileName(period time.Time) string {
	return ledgerFileName(s.Keyword, period)
}

func ledgerFileName(keyword string, period time.Time) string {
	return fmt.Sprintf("%s_%s", period.Format("2006_01"), keyword)
}

// LedgerOptions tunes a generated ledger.
type LedgerOptions struct {
	Rows       int
	MatchRatio float64
	CancelRate float64
}

// Generator produces catalog and ledger tables from a seeded source.
type Generator struct {
	rng    *rand.Rand
	period time.Time
}

// NewGenerator creates a generator for ledgers booked in period's month.
func NewGenerator(seed int64, period time.Time) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), period: period}
}

// LedgerSpecs returns one spec per rule-set, dispatchable ones first.
func (g *Generator) LedgerSpecs() []LedgerSpec {
	registry := rulesets.Default()
	specs := make([]LedgerSpec, 0, len(registry.All())+1)
	for _, rs := range registry.All() {
		specs = append(specs, LedgerSpec{
			Key:     rs.Key,
			Keyword: rs.Keyword,
			Account: rs.Name,
			Bracket: rs.Extraction.Mode == extractor.ModeBracket,
		})
	}
	agg := registry.Aggregate()
	return append(specs, LedgerSpec{Key: agg.Key, Keyword: "기타매출"})
}

type unit struct {
	id       string
	newPlate string
	oldPlate string
}

// Catalog generates n sales records sold within the three months up to the ledger period.
func (g *Generator) Catalog(n int) *models.Table {
	t := models.NewTable("상품ID", "판매일자", "신차량번호", "구차량번호", "판매처")
	seen := make(map[string]bool, n)
	start := g.period.AddDate(0, -2, 0)
	end := g.period.AddDate(0, 1, -1)
	for i := 0; len(t.Rows) < n; i++ {
		newPlate := g.plate()
		if seen[newPlate] {
			continue
		}
		seen[newPlate] = true
		old := ""
		if g.rng.Float64() < 0.5 {
			old = regions[g.rng.Intn(len(regions))] + g.plate()
		}
		t.AppendRow(
			fmt.Sprintf("C%06d", 100000+i),
			g.date(start, end).Format("2006-01-02"),
			newPlate,
			old,
			channels[g.rng.Intn(len(channels))],
		)
	}
	return t
}

// Ledger generates a ledger for spec. Rows are sorted by date and closed by a
// 월계 and a 누계 subtotal row.
func (g *Generator) Ledger(spec LedgerSpec, catalog *models.Table, opts LedgerOptions) *models.Table {
	units := catalogUnits(catalog)
	start := g.period
	end := g.period.AddDate(0, 1, -1)

	type row struct {
		date   time.Time
		values []string
	}
	var rows []row
	add := func(date time.Time, narration, account, counterparty string, amount decimal.Decimal) {
		rows = append(rows, row{date: date, values: []string{
			"", account, date.Format("2006-01-02"), "", narration,
			"", counterparty, "", amount.String(),
			departments[g.rng.Intn(len(departments))], writers[g.rng.Intn(len(writers))],
		}})
	}

	for i := 0; i < opts.Rows; i++ {
		account := spec.Account
		if spec.Key == "v11" {
			account = otherRevenueAccounts[g.rng.Intn(len(otherRevenueAccounts))]
		}
		counterparty := ""
		if spec.Key == "v7" {
			counterparty = merchandisingVendors[g.rng.Intn(len(merchandisingVendors))]
		}

		u := unit{newPlate: g.plate()}
		if len(units) > 0 && g.rng.Float64() < opts.MatchRatio {
			u = units[g.rng.Intn(len(units))]
		}
		narration := g.narration(spec, u)
		amount := decimal.NewFromInt(int64(g.rng.Intn(500)+1) * 1000)
		date := g.date(start, end)
		add(date, narration, account, counterparty, amount)

		if g.rng.Float64() < opts.CancelRate {
			add(date.AddDate(0, 0, 1), narration, account, counterparty, amount.Neg())
			add(date.AddDate(0, 0, 2), narration, account, counterparty, amount)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	t := models.NewTable(ledgerColumns...)
	total := decimal.Zero
	for i, r := range rows {
		r.values[0] = accountCode(spec.Key)
		r.values[3] = strconv.Itoa(i + 1)
		amount, _ := decimal.NewFromString(r.values[8])
		total = total.Add(amount)
		t.AppendRow(r.values...)
	}
	t.AppendRow("", "", "월계", "", "", "", "", "", total.String(), "", "")
	t.AppendRow("", "", "누계", "", "", "", "", "", total.String(), "", "")
	return t
}

func (g *Generator) narration(spec LedgerSpec, u unit) string {
	options := phrases[spec.Key]
	phrase := options[g.rng.Intn(len(options))]
	if spec.Bracket {
		second := u.oldPlate
		if second == "" {
			second = regions[g.rng.Intn(len(regions))] + g.plate()
		}
		return fmt.Sprintf("%s(%s) %s", u.newPlate, second, phrase)
	}
	if spec.Key == "v7" && g.rng.Float64() < 0.1 {
		return phrase
	}
	return fmt.Sprintf("%s %s 정산", phrase, u.newPlate)
}

// plate returns a current-format registration number such as 12가3456 or 123가4567.
func (g *Generator) plate() string {
	digits := 10 + g.rng.Intn(90)
	if g.rng.Float64() < 0.3 {
		digits = 100 + g.rng.Intn(900)
	}
	return fmt.Sprintf("%d%s%04d", digits, plateLetters[g.rng.Intn(len(plateLetters))], g.rng.Intn(10000))
}

func (g *Generator) date(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours()/24) + 1
	return start.AddDate(0, 0, g.rng.Intn(days))
}

func catalogUnits(catalog *models.Table) []unit {
	units := make([]unit, 0, len(catalog.Rows))
	for r := range catalog.Rows {
		units = append(units, unit{
			id:       catalog.Value(r, "상품ID"),
			newPlate: catalog.Value(r, "신차량번호"),
			oldPlate: catalog.Value(r, "구차량번호"),
		})
	}
	return units
}

func accountCode(key string) string {
	if key == "v11" {
		return "41100"
	}
	return "412" + key[1:]
}
