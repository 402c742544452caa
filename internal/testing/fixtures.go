package testing

import (
	"strconv"

	"github.com/aristath/turnips/internal/domain"
)

// NewRecordFixture returns a fully labelled record whose prices fall by five
// per slot from purchasePrice-10.
func NewRecordFixture(owner string, week, purchasePrice int) domain.WeeklyRecord {
	rec := domain.WeeklyRecord{
		Owner:           owner,
		IslandName:      owner + " Isle",
		WeekIndex:       week,
		PurchasePrice:   purchasePrice,
		PreviousPattern: domain.PatternRandom,
		CurrentPattern:  domain.PatternDecreasing,
	}
	for i := range rec.Prices {
		rec.Prices[i] = domain.NewPrice(purchasePrice - 10 - 5*i)
	}
	return rec
}

// NewRecordFixtures returns a mix of perfect, partial and unlabelled records
// spread over two weeks.
func NewRecordFixtures() []domain.WeeklyRecord {
	perfect := NewRecordFixture("Bob", 0, 100)

	spike := NewRecordFixture("Alice", 0, 95)
	spike.CurrentPattern = domain.PatternHighSpike
	spike.Prices[4] = domain.NewPrice(480)

	partial := NewRecordFixture("Carol", 1, 102)
	partial.PreviousPattern = domain.PatternEmpty
	partial.CurrentPattern = domain.PatternEmpty
	for i := 6; i < domain.PriceSlots; i++ {
		partial.Prices[i] = domain.MissingPrice()
	}

	sparse := NewRecordFixture("Dave", 1, 99)
	sparse.PreviousPattern = domain.PatternEmpty
	sparse.CurrentPattern = domain.PatternEmpty
	for i := 2; i < domain.PriceSlots; i++ {
		sparse.Prices[i] = domain.MissingPrice()
	}

	return []domain.WeeklyRecord{perfect, spike, partial, sparse}
}

// CommunityRow renders a record as a community layout spreadsheet row.
func CommunityRow(rec domain.WeeklyRecord, current, previous string) []string {
	row := []string{rec.Owner, rec.IslandName, strconv.Itoa(rec.PurchasePrice)}
	for _, p := range rec.Prices {
		if v, ok := p.Value(); ok {
			row = append(row, strconv.Itoa(v))
		} else {
			row = append(row, "")
		}
	}
	return append(row, current, previous)
}

// CommunitySheet returns two weeks of community rows separated by a blank
// row: three usable rows and one without a purchase price.
func CommunitySheet() [][]string {
	bob := NewRecordFixture("Bob", 0, 100)
	alice := NewRecordFixture("Alice", 0, 95)
	carol := NewRecordFixture("Carol", 1, 102)

	broken := CommunityRow(NewRecordFixture("Eve", 1, 90), "", "")
	broken[2] = ""

	return [][]string{
		CommunityRow(bob, "decreasing", "random"),
		CommunityRow(alice, "big spike", "random"),
		{},
		CommunityRow(carol, "", ""),
		broken,
	}
}
