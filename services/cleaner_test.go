package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-reservations/models"
)

const anomalyStep = "drop isolation forest anomalies"

// dirtyBookings mixes generated bookings with one of each row the pipeline
// is meant to remove or repair.
func dirtyBookings() []booking {
	bs := generate(400, 7)
	add := func(mut func(b *booking)) {
		b := typical(1000 + len(bs))
		mut(&b)
		bs = append(bs, b)
	}
	add(func(b *booking) { b.MealPlan = models.MealPlan3 })
	add(func(b *booking) { b.RoomType = models.RoomType3 })
	add(func(b *booking) { b.Children = 9 })
	add(func(b *booking) { b.Children = 10 })
	add(func(b *booking) { b.Weekend, b.Week = 0, 0 })
	add(func(b *booking) { b.Price = 650 })
	add(func(b *booking) {
		b.Price = 0
		b.Segment = models.SegmentAviation
	})
	add(func(b *booking) {
		b.Price = 0
		b.Segment = models.SegmentComplementary
	})
	add(func(b *booking) { b.Month, b.Date = 2, 29 })
	add(func(b *booking) {
		b.Month, b.Date = 2, 29
		b.Year = 2017
	})
	add(func(b *booking) { b.Adults, b.Children = 0, 2 })
	add(func(b *booking) { b.Adults, b.Children = 0, 1 })
	add(func(b *booking) {
		b.Adults, b.Children = 0, 3
		b.Weekend = 2
	})
	return bs
}

func TestCleanSwapsTransposedCounts(t *testing.T) {
	bs := generate(200, 1)
	b := typical(5000)
	b.Adults, b.Children = 0, 2
	b.Weekend, b.Week = 1, 1
	b.MealPlan = "Meal Plan 1"
	b.Price = 100
	bs = append(bs, b)

	out := cleanExcept(t, newTestCleaner(), rawTable(t, bs), anomalyStep)

	assert.False(t, out.Has(models.ColChildren))
	rows := rowsByLeadTime(t, out)
	require.Contains(t, rows, 5000)
	assert.Equal(t, 2.0, rows[5000][models.ColAdults])
	assert.Equal(t, 1.0, rows[5000][models.ColWithChildren])
}

func TestCleanZeroPriceSegments(t *testing.T) {
	bs := generate(100, 2)
	for lt, seg := range map[int]string{
		5001: models.SegmentCorporate,
		5002: models.SegmentAviation,
		5003: models.SegmentOnline,
		5004: models.SegmentComplementary,
		5005: models.SegmentOffline,
	} {
		b := typical(lt)
		b.Price = 0
		b.Segment = seg
		bs = append(bs, b)
	}

	out := cleanThrough(t, newTestCleaner(), rawTable(t, bs), "drop zero prices outside paid segments")
	rows := rowsByLeadTime(t, out)

	assert.Contains(t, rows, 5001, "corporate")
	assert.Contains(t, rows, 5003, "online")
	assert.Contains(t, rows, 5005, "offline")
	assert.NotContains(t, rows, 5002, "aviation")
	assert.NotContains(t, rows, 5004, "complementary")
}

func TestCleanOutputProperties(t *testing.T) {
	bs := dirtyBookings()
	raw := make(map[int]booking, len(bs))
	for _, b := range bs {
		raw[b.LeadTime] = b
	}

	out, report, err := newTestCleaner().Clean(rawTable(t, bs))
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Positive(t, out.Rows())

	for _, gone := range []string{
		models.ColBookingID, models.ColChildren, models.ColParkingSpace,
		models.ColRepeatedGuest, models.ColPreviousCancellations, models.ColPreviousNotCanceled,
		models.ColMealPlan, models.ColRoomType, models.ColMarketSegment,
		models.ColWeekendNights, models.ColWeekNights, models.ColSpecialRequests,
		models.IndicatorName(models.ColMealPlan, models.MealPlan3),
		models.IndicatorName(models.ColRoomType, models.RoomType3),
		models.IndicatorName(models.ColMarketSegment, models.SegmentAviation),
	} {
		assert.False(t, out.Has(gone), "column %q should not be in the output", gone)
	}
	assert.True(t, out.Has(models.ColWithChildren))

	prices, err := out.Floats(models.ColAvgPricePerRoom)
	require.NoError(t, err)
	segments, err := out.Decode(models.ColMarketSegment)
	require.NoError(t, err)
	weekend, err := out.Decode(models.ColWeekendNights)
	require.NoError(t, err)
	week, err := out.Decode(models.ColWeekNights)
	require.NoError(t, err)

	for i, p := range prices {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 500.0)
		if p == 0 {
			assert.Contains(t, []string{models.SegmentOnline, models.SegmentOffline, models.SegmentCorporate}, segments[i])
		}
		assert.False(t, weekend[i] == "0" && week[i] == "0", "row %d has no nights", i)
	}

	for _, src := range []string{
		models.ColMealPlan, models.ColRoomType, models.ColMarketSegment,
		models.ColWeekendNights, models.ColWeekNights, models.ColSpecialRequests,
	} {
		enc, ok := out.Encoding(src)
		require.True(t, ok, src)
		sums := make([]float64, out.Rows())
		for _, col := range enc.Indicators() {
			vals, err := out.Floats(col)
			require.NoError(t, err)
			for i, v := range vals {
				assert.Contains(t, []float64{0, 1}, v)
				sums[i] += v
			}
		}
		for i, s := range sums {
			assert.LessOrEqual(t, s, 1.0, "%s group sums to %v on row %d", src, s, i)
		}
	}

	status, err := out.Floats(models.ColBookingStatus)
	require.NoError(t, err)
	for _, s := range status {
		assert.Contains(t, []float64{0, 1}, s)
	}

	for lt, row := range rowsByLeadTime(t, out) {
		b, ok := raw[lt]
		require.True(t, ok)
		assert.NotEqual(t, 9, b.Children)
		assert.NotEqual(t, 10, b.Children)
		assert.False(t, b.Month == 2 && b.Date == 29, "leap day arrival kept")
		assert.NotEqual(t, models.MealPlan3, b.MealPlan)
		assert.NotEqual(t, models.RoomType3, b.RoomType)

		wantKids := 0.0
		if b.Children > 0 {
			wantKids = 1
		}
		assert.Equal(t, wantKids, row[models.ColWithChildren], "with_children for lead time %d", lt)
		if b.Adults == 0 && b.Children != 0 {
			assert.Equal(t, float64(b.Children), row[models.ColAdults], "swapped adults for lead time %d", lt)
		} else {
			assert.Equal(t, float64(b.Adults), row[models.ColAdults])
		}
	}
}

func TestCleanDropsLeapDayArrivals(t *testing.T) {
	bs := generate(300, 3)
	for i := 0; i < 5; i++ {
		b := bs[i*10]
		b.LeadTime = 6000 + i
		b.Month, b.Date = 2, 29
		bs = append(bs, b)
	}

	out, _, err := newTestCleaner().Clean(rawTable(t, bs))
	require.NoError(t, err)

	for lt := range rowsByLeadTime(t, out) {
		assert.Less(t, lt, 6000)
	}
}

func TestCleanReport(t *testing.T) {
	c := newTestCleaner()
	in := rawTable(t, dirtyBookings())

	out, report, err := c.Clean(in)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	assert.Equal(t, in.Rows(), report.InputRows)
	assert.Equal(t, out.Rows(), report.OutputRows)
	require.Len(t, report.Steps, 21)

	for i, st := range report.Steps {
		assert.Equal(t, i+1, st.Index)
		assert.Equal(t, c.Steps()[i].Name, st.Name)
		if i > 0 {
			assert.Equal(t, report.Steps[i-1].RowsAfter, st.RowsBefore)
			assert.Equal(t, report.Steps[i-1].ColsAfter, st.ColsBefore)
		}
	}

	anomalies := report.Steps[19]
	require.Equal(t, anomalyStep, anomalies.Name)
	assert.Positive(t, anomalies.Dropped())
	assert.LessOrEqual(t, anomalies.Dropped(), anomalies.RowsBefore/10)
	assert.Equal(t, anomalies.ColsBefore, anomalies.ColsAfter)
}

func TestCleanIsDeterministic(t *testing.T) {
	bs := dirtyBookings()

	a, _, err := newTestCleaner().Clean(rawTable(t, bs))
	require.NoError(t, err)
	b, _, err := newTestCleaner().Clean(rawTable(t, bs))
	require.NoError(t, err)

	assert.Equal(t, a.Records(), b.Records())
}

func TestCleanMissingColumn(t *testing.T) {
	tests := []struct {
		drop     string
		wantStep string
	}{
		{models.ColBookingID, "drop booking id"},
		{models.ColAvgPricePerRoom, "drop zero prices outside paid segments"},
		{models.ColArrivalDate, "drop 29 february arrivals"},
	}

	for _, tt := range tests {
		t.Run(tt.drop, func(t *testing.T) {
			in, err := rawTable(t, generate(50, 4)).Drop(tt.drop)
			require.NoError(t, err)

			out, report, err := newTestCleaner().Clean(in)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Nil(t, report)

			var schemaErr *models.SchemaError
			require.True(t, errors.As(err, &schemaErr), "got %v", err)
			assert.Equal(t, tt.wantStep, schemaErr.Step)
		})
	}
}

func TestCleanedFiltersArePassThrough(t *testing.T) {
	c := newTestCleaner()
	out, _, err := c.Clean(rawTable(t, dirtyBookings()))
	require.NoError(t, err)

	for _, step := range c.Steps() {
		switch step.Name {
		case "drop zero prices outside paid segments", "drop prices above 500", "drop 29 february arrivals":
		default:
			continue
		}
		again, err := step.Apply(out)
		require.NoError(t, err, step.Name)
		assert.Equal(t, out.Records(), again.Records(), step.Name)
	}
}

func TestCleanEncodings(t *testing.T) {
	out := cleanExcept(t, newTestCleaner(), rawTable(t, dirtyBookings()), anomalyStep)

	baselines := map[string]string{
		models.ColMealPlan:        "Meal Plan 1",
		models.ColRoomType:        "Room_Type 1",
		models.ColMarketSegment:   models.SegmentAviationFunded,
		models.ColWeekendNights:   "0",
		models.ColSpecialRequests: "0",
	}
	for src, want := range baselines {
		enc, ok := out.Encoding(src)
		require.True(t, ok, src)
		assert.Equal(t, want, enc.Baseline, src)
	}

	for _, col := range []string{
		"type_of_meal_plan_Meal Plan 2",
		"type_of_meal_plan_Not Selected",
		"market_segment_type_Corporate",
		"market_segment_type_Offline",
		"market_segment_type_Online",
		"no_of_weekend_nights_3+",
		"no_of_week_nights_6+",
		"no_of_special_requests_1",
		"no_of_special_requests_2+",
	} {
		assert.True(t, out.Has(col), col)
	}
}

func TestSwapAdultsAndChildren(t *testing.T) {
	bs := []booking{typical(1), typical(2), typical(3)}
	bs[0].Adults, bs[0].Children = 0, 2
	bs[1].Adults, bs[1].Children = 0, 0
	bs[2].Adults, bs[2].Children = 2, 1

	out, err := swapAdultsAndChildren(rawTable(t, bs))
	require.NoError(t, err)

	adults, _ := out.Floats(models.ColAdults)
	children, _ := out.Floats(models.ColChildren)
	flags, _ := out.Floats(models.ColWithChildren)
	assert.Equal(t, []float64{2, 0, 2}, adults)
	assert.Equal(t, []float64{0, 0, 1}, children)
	assert.Equal(t, []float64{1, 0, 1}, flags)

	out, err = deriveWithChildren(out)
	require.NoError(t, err)
	assert.False(t, out.Has(models.ColChildren))
}

func TestDeriveWithChildrenWithoutSwap(t *testing.T) {
	bs := []booking{typical(1), typical(2)}
	bs[0].Children = 3

	out, err := deriveWithChildren(rawTable(t, bs))
	require.NoError(t, err)

	flags, err := out.Floats(models.ColWithChildren)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, flags)
	assert.Equal(t, models.ColWithChildren, out.Columns()[len(out.Columns())-1])
}

func TestBuckets(t *testing.T) {
	tests := []struct {
		name  string
		label func(float64) string
		in    []float64
		want  []string
	}{
		{"weekend", weekendNightsBucket, []float64{0, 1, 2, 3, 7}, []string{"0", "1", "2", "3+", "3+"}},
		{"week", weekNightsBucket, []float64{0, 3, 5, 6, 17}, []string{"0", "3", "5", "6+", "6+"}},
		{"special requests", specialRequestsBucket, []float64{0, 1, 2, 5, -1}, []string{"0", "1", "2+", "2+", "Unknown"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]string, len(tt.in))
			for i, v := range tt.in {
				got[i] = tt.label(v)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnomalyStepOnEmptyTable(t *testing.T) {
	out := cleanThrough(t, newTestCleaner(), rawTable(t, generate(20, 5)), "bucket special requests")
	empty, err := out.Filter(func(int) bool { return false })
	require.NoError(t, err)

	got, err := newTestCleaner().dropAnomalies(empty)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Rows())
	assert.Equal(t, empty.Columns(), got.Columns())
}
