package core

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func donationAt(day string, cents int64) Donation {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return Donation{ID: day, Name: "donor", Amount: Money{Cents: cents}, CreatedAt: t}
}

func TestAggregateByMonthExample(t *testing.T) {
	records := []Donation{
		donationAt("2024-01-05", 1000),
		donationAt("2024-01-20", 500),
		donationAt("2024-02-01", 2000),
	}

	got := AggregateByMonth(records)

	assert.Equal(t, []MonthlyAggregate{
		{Month: "2024-02", DonationCount: 1, TotalAmount: Money{Cents: 2000}},
		{Month: "2024-01", DonationCount: 2, TotalAmount: Money{Cents: 1500}},
	}, got)
}

func TestAggregateByMonthEmpty(t *testing.T) {
	got := AggregateByMonth(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateByMonthPermutationInvariant(t *testing.T) {
	var records []Donation
	for i, day := range []string{"2023-12-31", "2024-01-01", "2024-01-15", "2024-03-02", "2024-03-30", "2025-01-01"} {
		records = append(records, donationAt(day, int64(100*(i+1)+7)))
	}
	want := AggregateByMonth(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Donation(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, AggregateByMonth(shuffled))
	}
}

func TestAggregateSumsAreExact(t *testing.T) {
	var records []Donation
	for i := 0; i < 10; i++ {
		records = append(records, donationAt("2024-05-01", 10)) // 0.10 each
	}
	got := AggregateByMonth(records)
	require.Len(t, got, 1)
	assert.Equal(t, int64(100), got[0].TotalAmount.Cents)
	assert.Equal(t, "1.00", got[0].TotalAmount.String())
}

func TestAggregateAtAmountCapStaysExact(t *testing.T) {
	m, err := ParseAmount("90000000000000000")
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, Money{}, m)

	records := []Donation{
		donationAt("2024-01-05", MaxAmountCents),
		donationAt("2024-01-20", MaxAmountCents),
		donationAt("2024-01-21", 1),
	}
	got := AggregateByMonth(records)
	require.Len(t, got, 1)
	assert.Equal(t, 2*MaxAmountCents+1, got[0].TotalAmount.Cents)
	assert.Positive(t, got[0].TotalAmount.Cents)

	totals := Summarize(got)
	assert.Equal(t, 2*MaxAmountCents+1, totals.TotalAmount.Cents)
	assert.Equal(t, Money{Cents: 66_666_666_667}, totals.Average())
}

func TestAverageRoundsHalfUp(t *testing.T) {
	assert.Equal(t, Money{Cents: 2}, averageOf(Money{Cents: 3}, 2))
	assert.Equal(t, Money{Cents: 1}, averageOf(Money{Cents: 4}, 3))
	assert.Equal(t, Money{Cents: 2}, averageOf(Money{Cents: 5}, 3))
	assert.Equal(t, Money{Cents: -2}, averageOf(Money{Cents: -3}, 2))
}

func TestSummarize(t *testing.T) {
	aggs := AggregateByMonth([]Donation{
		donationAt("2024-01-05", 1000),
		donationAt("2024-01-20", 500),
		donationAt("2024-02-01", 2000),
	})

	totals := Summarize(aggs)

	assert.Equal(t, Money{Cents: 3500}, totals.TotalAmount)
	assert.Equal(t, 3, totals.DonorCount)
	assert.Equal(t, "11.67", totals.Average().String())
	assert.Equal(t, "7.50", aggs[1].Average().String())
}

func TestSummarizeNoDonors(t *testing.T) {
	totals := Summarize(nil)
	assert.Equal(t, 0, totals.DonorCount)
	assert.Equal(t, Money{}, totals.Average())
}

func TestLatestPrefersLaterOnTie(t *testing.T) {
	assert.Nil(t, Latest(nil))

	a := donationAt("2024-03-01", 100)
	a.ID = "a"
	b := donationAt("2024-03-05", 200)
	b.ID = "b"
	c := donationAt("2024-03-05", 300)
	c.ID = "c"
	d := donationAt("2024-02-28", 400)
	d.ID = "d"

	got := Latest([]Donation{a, b, c, d})
	require.NotNil(t, got)
	assert.Equal(t, "c", got.ID)
}
