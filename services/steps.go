package services

import (
	"math"
	"strconv"

	"hotel-reservations/ml"
	"hotel-reservations/models"
	"hotel-reservations/table"
)

const (
	maxPricePerRoom = 500.0
	iqrMultiplier   = 1.5
)

// pipeline returns the cleaning steps in execution order.
func (c *Cleaner) pipeline() []Step {
	return []Step{
		{"drop booking id", dropColumns(models.ColBookingID)},
		{"drop meal plan 3", excludeCategory(models.ColMealPlan, models.MealPlan3)},
		{"encode meal plan", oneHot(models.ColMealPlan)},
		{"drop room type 3", excludeCategory(models.ColRoomType, models.RoomType3)},
		{"encode room type", oneHot(models.ColRoomType)},
		{"merge aviation and complementary segments", mergeSegments},
		{"encode market segment", oneHot(models.ColMarketSegment)},
		{"encode booking status", encodeBookingStatus},
		{"drop 9 or 10 children", dropImplausibleChildren},
		{"swap adults and children", swapAdultsAndChildren},
		{"derive with_children", deriveWithChildren},
		{"drop zero night stays", dropZeroNightStays},
		{"bucket weekend nights", bucketAndEncode(models.ColWeekendNights, weekendNightsBucket)},
		{"bucket week nights", bucketAndEncode(models.ColWeekNights, weekNightsBucket)},
		{"drop uninformative columns", dropColumns(
			models.ColParkingSpace,
			models.ColRepeatedGuest,
			models.ColPreviousCancellations,
			models.ColPreviousNotCanceled,
		)},
		{"drop zero prices outside paid segments", dropUnpaidZeroPrices},
		{"drop prices above 500", dropExpensiveRooms},
		{"drop price outliers by IQR", dropPriceOutliers},
		{"bucket special requests", bucketAndEncode(models.ColSpecialRequests, specialRequestsBucket)},
		{"drop isolation forest anomalies", c.dropAnomalies},
		{"drop 29 february arrivals", dropLeapDayArrivals},
	}
}

func dropColumns(cols ...string) func(*table.Table) (*table.Table, error) {
	return func(t *table.Table) (*table.Table, error) {
		return t.Drop(cols...)
	}
}

func excludeCategory(col, value string) func(*table.Table) (*table.Table, error) {
	return func(t *table.Table) (*table.Table, error) {
		vals, err := t.Strings(col)
		if err != nil {
			return nil, err
		}
		return t.Filter(func(i int) bool { return vals[i] != value })
	}
}

func oneHot(col string) func(*table.Table) (*table.Table, error) {
	return func(t *table.Table) (*table.Table, error) {
		return t.OneHot(col)
	}
}

func bucketAndEncode(col string, label func(float64) string) func(*table.Table) (*table.Table, error) {
	return func(t *table.Table) (*table.Table, error) {
		out, err := t.Bucket(col, label)
		if err != nil {
			return nil, err
		}
		return out.OneHot(col)
	}
}

func mergeSegments(t *table.Table) (*table.Table, error) {
	vals, err := t.Strings(models.ColMarketSegment)
	if err != nil {
		return nil, err
	}
	merged := make([]string, len(vals))
	for i, v := range vals {
		if v == models.SegmentAviation || v == models.SegmentComplementary {
			v = models.SegmentAviationFunded
		}
		merged[i] = v
	}
	return t.SetStrings(models.ColMarketSegment, merged)
}

// encodeBookingStatus maps Canceled to 1 and every other status to 0.
func encodeBookingStatus(t *table.Table) (*table.Table, error) {
	vals, err := t.Strings(models.ColBookingStatus)
	if err != nil {
		return nil, err
	}
	codes := make([]int, len(vals))
	for i, v := range vals {
		if v == models.StatusCanceled {
			codes[i] = 1
		}
	}
	return t.SetInts(models.ColBookingStatus, codes)
}

func dropImplausibleChildren(t *table.Table) (*table.Table, error) {
	children, err := t.Floats(models.ColChildren)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool { return children[i] != 9 && children[i] != 10 })
}

// swapAdultsAndChildren exchanges the two counts on bookings that list
// children but no adults. It also records the with_children flag from the
// counts as read, so a transposed booking keeps its children flag.
func swapAdultsAndChildren(t *table.Table) (*table.Table, error) {
	if err := t.Require(models.ColAdults, models.ColChildren); err != nil {
		return nil, err
	}
	adults, _ := t.Floats(models.ColAdults)
	children, _ := t.Floats(models.ColChildren)
	flags := make([]int, len(children))
	for i := range adults {
		if children[i] > 0 {
			flags[i] = 1
		}
		if adults[i] == 0 && children[i] != 0 && !math.IsNaN(children[i]) {
			adults[i], children[i] = children[i], adults[i]
		}
	}
	out, err := setCounts(t, models.ColAdults, adults)
	if err != nil {
		return nil, err
	}
	if out, err = setCounts(out, models.ColChildren, children); err != nil {
		return nil, err
	}
	return out.SetInts(models.ColWithChildren, flags)
}

// deriveWithChildren replaces the children count with the with_children
// flag. Tables that never went through the swap get the flag from the
// count itself.
func deriveWithChildren(t *table.Table) (*table.Table, error) {
	if t.Has(models.ColWithChildren) {
		return t.Drop(models.ColChildren)
	}
	children, err := t.Floats(models.ColChildren)
	if err != nil {
		return nil, err
	}
	flags := make([]int, len(children))
	for i, v := range children {
		if v > 0 {
			flags[i] = 1
		}
	}
	out, err := t.SetInts(models.ColWithChildren, flags)
	if err != nil {
		return nil, err
	}
	return out.Drop(models.ColChildren)
}

func dropZeroNightStays(t *table.Table) (*table.Table, error) {
	if err := t.Require(models.ColWeekendNights, models.ColWeekNights); err != nil {
		return nil, err
	}
	weekend, _ := t.Floats(models.ColWeekendNights)
	week, _ := t.Floats(models.ColWeekNights)
	return t.Filter(func(i int) bool { return weekend[i] != 0 || week[i] != 0 })
}

func weekendNightsBucket(v float64) string {
	switch v {
	case 0, 1, 2:
		return strconv.Itoa(int(v))
	}
	return "3+"
}

func weekNightsBucket(v float64) string {
	switch v {
	case 0, 1, 2, 3, 4, 5:
		return strconv.Itoa(int(v))
	}
	return "6+"
}

// specialRequestsBucket labels 0 and 1 by value, 2 or more as "2+" and
// anything else, including negative and missing counts, as "Unknown".
func specialRequestsBucket(v float64) string {
	switch {
	case v == 0 || v == 1:
		return strconv.Itoa(int(v))
	case v >= 2:
		return "2+"
	}
	return "Unknown"
}

// dropUnpaidZeroPrices removes free bookings unless they came through the
// online, offline or corporate channels.
func dropUnpaidZeroPrices(t *table.Table) (*table.Table, error) {
	prices, err := t.Floats(models.ColAvgPricePerRoom)
	if err != nil {
		return nil, err
	}
	segments, err := t.Decode(models.ColMarketSegment)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool {
		if prices[i] != 0 {
			return true
		}
		switch segments[i] {
		case models.SegmentOnline, models.SegmentOffline, models.SegmentCorporate:
			return true
		}
		return false
	})
}

func dropExpensiveRooms(t *table.Table) (*table.Table, error) {
	prices, err := t.Floats(models.ColAvgPricePerRoom)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool { return prices[i] <= maxPricePerRoom })
}

func dropPriceOutliers(t *table.Table) (*table.Table, error) {
	prices, err := t.Floats(models.ColAvgPricePerRoom)
	if err != nil {
		return nil, err
	}
	lower, upper := ml.IQRBounds(prices, iqrMultiplier)
	return t.Filter(func(i int) bool { return prices[i] >= lower && prices[i] <= upper })
}

// dropAnomalies fits an Isolation Forest on every column except the target
// and keeps the rows it labels as inliers.
func (c *Cleaner) dropAnomalies(t *table.Table) (*table.Table, error) {
	if err := t.Require(models.ColBookingStatus); err != nil {
		return nil, err
	}
	if t.Rows() == 0 {
		return t, nil
	}
	var features []string
	for _, col := range t.Columns() {
		if col != models.ColBookingStatus {
			features = append(features, col)
		}
	}
	X, err := t.Matrix(features)
	if err != nil {
		return nil, err
	}

	forest := ml.NewIsolationForest(
		ml.WithIsolationTrees(c.outliers.Trees),
		ml.WithContamination(c.outliers.Contamination),
		ml.WithIsolationSeed(c.outliers.Seed),
		ml.WithIsolationWorkers(c.outliers.Workers),
	)
	labels, err := forest.FitPredict(X)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("[cleaner] isolation forest on %d features, %d trees", len(features), forest.NTrees)
	return t.Filter(func(i int) bool { return labels[i] == 1 })
}

func dropLeapDayArrivals(t *table.Table) (*table.Table, error) {
	if err := t.Require(models.ColArrivalMonth, models.ColArrivalDate); err != nil {
		return nil, err
	}
	month, _ := t.Floats(models.ColArrivalMonth)
	day, _ := t.Floats(models.ColArrivalDate)
	return t.Filter(func(i int) bool { return !(month[i] == 2 && day[i] == 29) })
}

// setCounts stores whole-number columns as ints so they serialise without a
// decimal part; anything else is kept as floats.
func setCounts(t *table.Table, col string, vals []float64) (*table.Table, error) {
	ints := make([]int, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || v != math.Trunc(v) {
			return t.SetFloats(col, vals)
		}
		ints[i] = int(v)
	}
	return t.SetInts(col, ints)
}
