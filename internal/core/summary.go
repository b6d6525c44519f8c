package core

import (
	"sort"
)

// MonthlyAggregate is the derived summary of all donations in one calendar month.
type MonthlyAggregate struct {
	Month         string // YYYY-MM
	DonationCount int
	TotalAmount   Money
}

// Totals are the reductions shown above the monthly table.
type Totals struct {
	TotalAmount Money
	DonorCount  int
}

// AggregateByMonth groups records by the YYYY-MM prefix of their creation
// timestamp and returns one aggregate per month, most recent month first.
// The result depends only on the multiset of records, never on their order.
func AggregateByMonth(records []Donation) []MonthlyAggregate {
	byMonth := make(map[string]*MonthlyAggregate)
	for _, d := range records {
		key := d.MonthKey()
		agg, ok := byMonth[key]
		if !ok {
			agg = &MonthlyAggregate{Month: key}
			byMonth[key] = agg
		}
		agg.DonationCount++
		agg.TotalAmount = agg.TotalAmount.Add(d.Amount)
	}

	out := make([]MonthlyAggregate, 0, len(byMonth))
	for _, agg := range byMonth {
		out = append(out, *agg)
	}
	// YYYY-MM sorts lexicographically in chronological order.
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

// Average returns the mean donation of the month rounded half-up to the cent.
func (a MonthlyAggregate) Average() Money {
	return averageOf(a.TotalAmount, a.DonationCount)
}

// Summarize reduces the monthly aggregates to overall totals.
func Summarize(aggs []MonthlyAggregate) Totals {
	var t Totals
	for _, a := range aggs {
		t.TotalAmount = t.TotalAmount.Add(a.TotalAmount)
		t.DonorCount += a.DonationCount
	}
	return t
}

// Average is TotalAmount / DonorCount rounded half-up to the cent, or zero
// when there are no donors.
func (t Totals) Average() Money {
	return averageOf(t.TotalAmount, t.DonorCount)
}

func averageOf(total Money, count int) Money {
	if count <= 0 {
		return Money{}
	}
	n := int64(count)
	neg := total.Cents < 0
	c := total.Cents
	if neg {
		c = -c
	}
	// divide first so the numerator never doubles
	q, r := c/n, c%n
	if r >= n-r {
		q++
	}
	if neg {
		q = -q
	}
	return Money{Cents: q}
}

// Latest returns the record with the greatest creation time, preferring the
// later element on ties. records must be in append order. Nil when empty.
func Latest(records []Donation) *Donation {
	var latest *Donation
	for i := range records {
		if latest == nil || !records[i].CreatedAt.Before(latest.CreatedAt) {
			latest = &records[i]
		}
	}
	if latest == nil {
		return nil
	}
	d := *latest
	return &d
}
