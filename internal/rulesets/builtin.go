package rulesets

import (
	c "sales-ledger-reconciler/internal/classifier"
	"sales-ledger-reconciler/internal/extractor"
)

var ledgerColumns = []string{ColumnDate, ColumnNarration, ColumnCredit, ColumnBoundary}

// narrationColumns serve rule-sets that classify text and never read amounts.
var narrationColumns = []string{ColumnDate, ColumnNarration, ColumnBoundary}

// AggregateColumns are the columns the aggregate keeps, in output order.
var AggregateColumns = []string{
	"계정코드", ColumnAccountName, ColumnDate, "NO", ColumnNarration,
	"거래처코드", ColumnCounterparty, ColumnDebit, ColumnCredit, "작성사원명",
}

var (
	bracket = extractor.Config{Mode: extractor.ModeBracket}
	scan    = extractor.Config{Mode: extractor.ModeScan}
)

func directAllocation() *c.Cascade {
	return c.NewCascade("간접", c.Rule{Label: "직접", When: c.PeriodMatched()})
}

// SalesRevenue is v1: bracket extraction, forklift carve-out, channel enrichment.
func SalesRevenue() *Ruleset {
	return compiled(&Ruleset{
		Key: "v1", Name: "상품매출", Keyword: "상품매출", MergeKey: true,
		RequiredColumns:     ledgerColumns,
		Boundary:            ColumnBoundary,
		Extraction:          bracket,
		Match:               MatchPrecedence,
		SentinelCarveOut:    true,
		Enrich:              true,
		DetectCancellations: true,
		Columns: concat(
			[]Column{yearColumn(), monthColumn(), unitColumn(HeaderUnit1, false), unitColumn(HeaderUnit2, true), catalogIDColumn()},
			saleColumns(),
			[]Column{channelColumn(), periodMatchColumn(), cancellationColumn()},
		),
	})
}

// RestorationCost is v2.
func RestorationCost() *Ruleset {
	return compiled(&Ruleset{
		Key: "v2", Name: "원상회복비", Keyword: "원상회복비", MergeKey: true,
		RequiredColumns:     ledgerColumns,
		Boundary:            ColumnBoundary,
		Extraction:          scan,
		Match:               MatchPrecedence,
		Enrich:              true,
		DetectCancellations: true,
		Allocation:          directAllocation(),
		Columns: concat(
			[]Column{yearColumn(), monthColumn(), unitColumn(HeaderUnit, false), catalogIDColumn()},
			saleColumns(),
			[]Column{periodMatchColumn(), cancellationColumn(), allocationColumn()},
		),
	})
}

// OtherFees is v3. It attributes nothing and only classifies narrations.
func OtherFees() *Ruleset {
	return compiled(&Ruleset{
		Key: "v3", Name: "기타수수료", Keyword: "기타수수료",
		RequiredColumns: narrationColumns,
		Boundary:        ColumnBoundary,
		Match:           MatchNone,
		Category: c.NewCascade("",
			c.Rule{Label: "보관료", When: c.NarrationContains("보관료", "운반비", "탁송료 환불")},
			c.Rule{Label: "차옥션연회비", When: c.NarrationContains("연회비")},
			c.Rule{Label: "낙찰취소 위약금", When: c.NarrationContains("낙찰취소 위약금")},
			c.Rule{Label: "데이터지급수수료", When: c.NarrationContains("성능책임보험", "성능점검인협동조합")},
			c.Rule{Label: "잡이익", When: c.NarrationContains("잡이익")},
			c.Rule{Label: "신차구매수수료", When: c.NarrationContains("신차구매 수수료", "신차구매수수료")},
			c.Rule{Label: "카드수수료", When: c.NarrationContains("KB국민카드")},
			c.Rule{Label: "계약금", When: c.NarrationContains("계약금", "계약취소", "수출 환불금", "수출 취소")},
			c.Rule{Label: "용역료", When: c.NarrationContains("용역료", "인력지원")},
			c.Rule{Label: "인센티브", When: c.NarrationContains("인센티브")},
			c.Rule{Label: "금융수수료", When: c.NarrationContains("PGM", "캐롯", "TM 수수료", "리스", "금융수수료")},
		),
		Allocation: c.NewCascade("연회비 외", c.Rule{Label: "연회비", When: c.CategoryIs("차옥션연회비")}),
		Columns: []Column{
			yearColumn(), monthColumn(), categoryColumn(HeaderSection), allocationColumn(),
		},
	})
}

// SellerFees is v4.
func SellerFees() *Ruleset {
	return compiled(&Ruleset{
		Key: "v4", Name: "매도비", Keyword: "매도비", MergeKey: true,
		RequiredColumns:     ledgerColumns,
		Boundary:            ColumnBoundary,
		Extraction:          bracket,
		Match:               MatchPrecedence,
		Enrich:              true,
		FlagDuplicates:      true,
		DetectCancellations: true,
		Columns: concat(
			[]Column{yearColumn(), monthColumn(), unitColumn(HeaderUnit1, false), unitColumn(HeaderUnit2, true), catalogIDColumn()},
			saleColumns(),
			[]Column{periodMatchColumn(), duplicateColumn(), cancellationColumn()},
		),
	})
}

// BidFees is v5.
func BidFees() *Ruleset {
	return compiled(&Ruleset{
		Key: "v5", Name: "낙찰수수료", Keyword: "낙찰수수료", MergeKey: true,
		RequiredColumns:     ledgerColumns,
		Boundary:            ColumnBoundary,
		Extraction:          scan,
		Match:               MatchPrecedence,
		Enrich:              true,
		FlagDuplicates:      true,
		DetectCancellations: true,
		Category: c.NewCascade("낙찰수수료",
			c.Rule{Label: "낙찰취소수수료", When: c.NarrationContains("낙찰취소 수수료", "낙찰취소 위약금", "낙찰취소수수료", "낙찰취소위약금")},
			c.Rule{Label: "자산", When: c.NarrationContains("자산", "LC")},
			c.Rule{Label: "외부출품", When: c.NarrationContains("외부", "위탁")},
		),
		Columns: concat(
			[]Column{yearColumn(), monthColumn(), unitColumn(HeaderUnit, false), catalogIDColumn(), categoryColumn(HeaderClass)},
			saleColumns(),
			[]Column{periodMatchColumn(), duplicateColumn(), cancellationColumn()},
		),
	})
}

// ConsignmentFees is v6.
func ConsignmentFees() *Ruleset {
	return compiled(&Ruleset{
		Key: "v6", Name: "위탁판매수수료", Keyword: "위탁판매수수료", MergeKey: true,
		RequiredColumns:     ledgerColumns,
		Boundary:            ColumnBoundary,
		Extraction:          scan,
		Match:               MatchPrecedence,
		Enrich:              true,
		FlagDuplicates:      true,
		DetectCancellations: true,
		Category: c.NewCascade("위탁판매수수료",
			c.Rule{Label: "위탁판매취소", When: c.NarrationContains("위탁판매취소", "판매취소", "판매 취소", "계약취소")},
			c.Rule{Label: "외부위탁", When: c.NarrationContains("외부")},
		),
		Columns: concat(
			[]Column{yearColumn(), monthColumn(), unitColumn(HeaderUnit, false), catalogIDColumn(), categoryColumn(HeaderClass)},
			saleColumns(),
			[]Column{periodMatchColumn(), duplicateColumn(), cancellationColumn()},
		),
	})
}

// Merchandising is v7: counterparty normalization and a review flag.
func Merchandising() *Ruleset {
	return compiled(&Ruleset{
		Key: "v7", Name: "상품화", Keyword: "상품화", MergeKey: true,
		RequiredColumns: ledgerColumns,
		Boundary:        ColumnBoundary,
		Extraction:      scan,
		Match:           MatchPrecedence,
		Category: c.NewCascade("",
			c.Rule{Label: "확인필요", When: c.Any(c.IdentifierMissing(), c.NarrationContains("외 "))},
		),
		Counterparties: merchandisingCounterparties(),
		Columns: []Column{
			yearColumn(), monthColumn(), unitColumn(HeaderUnit, false), catalogIDColumn(),
			counterpartyColumn(), categoryColumn(HeaderRemark),
		},
	})
}

// AppraiserFees is v8.
func AppraiserFees() *Ruleset {
	return compiled(&Ruleset{
		Key: "v8", Name: "평가사수수료", Keyword: "평가사수수료", MergeKey: true,
		RequiredColumns:     ledgerColumns,
		Boundary:            ColumnBoundary,
		Extraction:          scan,
		Match:               MatchPrecedence,
		Enrich:              true,
		FlagDuplicates:      true,
		DetectCancellations: true,
		Allocation:          directAllocation(),
		Columns: concat(
			[]Column{yearColumn(), monthColumn(), unitColumn(HeaderUnit, false), catalogIDColumn()},
			saleColumns(),
			[]Column{periodMatchColumn(), duplicateColumn(), cancellationColumn(), allocationColumn()},
		),
	})
}

const (
	careAccount     = "기타매출(리본케어)"
	carePlusAccount = "기타매출(리본케어플러스)"
	homeAccount     = "기타매출(엔카홈서비스)"
	deliveryAccount = "기타매출(탁송비)"
)

// OtherRevenue is v11, the aggregate over many other-revenue ledgers.
func OtherRevenue() *Ruleset {
	return compiled(&Ruleset{
		Key: "v11", Name: "기타매출집계", MergeKey: true,
		RequiredColumns: AggregateColumns,
		KeepColumns:     AggregateColumns,
		Extraction:      extractor.Config{Mode: extractor.ModeScan, AllowSpace: true},
		Match:           MatchLongForm,
		Category: c.NewCascade("",
			c.Rule{Label: "매출취소", When: c.All(c.AccountIs(careAccount, carePlusAccount), c.NarrationContains("매출취소", "환불"))},
			c.Rule{Label: "", When: c.AccountIs(careAccount, carePlusAccount)},
			c.Rule{Label: "홈서비스", When: c.All(c.AccountIs(homeAccount), c.NarrationContains("홈서비스", "엔카믿고"))},
			c.Rule{Label: "확인필요", When: c.AccountIs(homeAccount)},
			c.Rule{Label: "", When: c.All(c.AccountIs(deliveryAccount), c.CatalogIDHasPrefix("C"))},
			c.Rule{Label: "판매취소", When: c.All(c.AccountIs(deliveryAccount),
				c.NarrationContains("판매취소", "판매 취소", "계약취소", "계약 취소", "단순변심", "엔카믿고"))},
			c.Rule{Label: "확인필요", When: c.AccountIs(deliveryAccount)},
		),
		Columns: []Column{
			yearColumn(), monthColumn(), unitColumn(HeaderUnit, false), catalogIDColumn(), categoryColumn(HeaderRemark),
		},
	})
}

func merchandisingCounterparties() c.CounterpartyMap {
	return c.CounterpartyMap{
		"디비손해보험주식회사":      "디비손해보험",
		"디비손해보험 주식회사":     "디비손해보험",
		"(주)레드캡투어":        "레드캡투어",
		"롯데렌탈(주)":         "롯데렌탈",
		"롯데캐피탈":           "롯데캐피탈",
		"삼성카드주식회사":        "삼성카드",
		"(주)마더브레인":        "삼성화재",
		"신한마이카":           "신한마이카",
		"(주)신한은행송현동금융센터":  "신한마이카",
		"주식회사쏘카":          "쏘카",
		"엔에이치농협캐피탈주식회사":   "엔에이치농협캐피탈",
		"엠지캐피탈(주)":        "엠지캐피탈",
		"MG캐피탈":           "엠지캐피탈",
		"오릭스캐피탈코리아 주식회사":  "오릭스캐피탈",
		"오토플러스(주)":        "오토플러스",
		"우리금융캐피탈 주식회사":    "우리금융캐피탈",
		"우리금융캐피탈":         "우리금융캐피탈",
		"우리금융캐피탈주식회사":     "우리금융캐피탈",
		"주식회사 하나애드아이엠씨":   "하나애드아이엠씨",
		"하나캐피탈":           "하나캐피탈",
		"하나캐피탈(주)":        "하나캐피탈",
		"현대글로비스 주식회사":     "현대글로비스",
		"현대자동차(주)양산중고차센터": "현대자동차",
		"현대자동차(주)용인중고차센터": "현대자동차",
		"현대캐피탈 주식회사":      "현대캐피탈",
		"현대캐피탈":           "현대캐피탈",
	}
}
