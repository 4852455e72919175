package services

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hotel-reservations/models"
	"hotel-reservations/storage"
	"hotel-reservations/table"
	"hotel-reservations/utils"
)

// booking is one raw reservation row. LeadTime doubles as a row key in
// tests, so every generated booking gets a distinct value.
type booking struct {
	Adults, Children     int
	Weekend, Week        int
	MealPlan, RoomType   string
	LeadTime             int
	Year, Month, Date    int
	Segment              string
	Price                float64
	SpecialRequests      int
	Status               string
	Parking, Repeated    int
	PrevCancel, PrevKept int
}

func (b booking) record(id int) string {
	return fmt.Sprintf("INN%05d,%d,%d,%d,%d,%s,%d,%s,%d,%d,%d,%d,%s,%d,%d,%d,%.2f,%d,%s",
		id, b.Adults, b.Children, b.Weekend, b.Week, b.MealPlan, b.Parking, b.RoomType,
		b.LeadTime, b.Year, b.Month, b.Date, b.Segment, b.Repeated, b.PrevCancel, b.PrevKept,
		b.Price, b.SpecialRequests, b.Status)
}

// typical returns an ordinary booking that no filter step targets.
func typical(leadTime int) booking {
	return booking{
		Adults: 2, Weekend: 1, Week: 2,
		MealPlan: "Meal Plan 1", RoomType: "Room_Type 1",
		LeadTime: leadTime, Year: 2018, Month: 6, Date: 15,
		Segment: models.SegmentOnline, Price: 100,
		SpecialRequests: 1, Status: "Not_Canceled",
	}
}

// generate returns n varied but plausible bookings with lead times 0..n-1.
func generate(n int, seed int64) []booking {
	rnd := rand.New(rand.NewSource(seed))
	meals := []string{"Meal Plan 1", "Meal Plan 1", "Meal Plan 2", "Not Selected"}
	rooms := []string{"Room_Type 1", "Room_Type 1", "Room_Type 2", "Room_Type 4"}
	segments := []string{
		models.SegmentOnline, models.SegmentOnline, models.SegmentOffline,
		models.SegmentCorporate, models.SegmentAviation, models.SegmentComplementary,
	}
	out := make([]booking, n)
	for i := range out {
		b := typical(i)
		b.Adults = 1 + rnd.Intn(3)
		if rnd.Intn(5) == 0 {
			b.Children = 1 + rnd.Intn(2)
		}
		b.Weekend = rnd.Intn(4)
		b.Week = 1 + rnd.Intn(6)
		b.MealPlan = meals[rnd.Intn(len(meals))]
		b.RoomType = rooms[rnd.Intn(len(rooms))]
		b.Year = 2017 + rnd.Intn(2)
		b.Month = 1 + rnd.Intn(12)
		b.Date = 1 + rnd.Intn(28)
		b.Segment = segments[rnd.Intn(len(segments))]
		b.Price = 70 + float64(rnd.Intn(8000))/100
		b.SpecialRequests = rnd.Intn(4)
		if rnd.Intn(3) == 0 {
			b.Status = models.StatusCanceled
		}
		out[i] = b
	}
	return out
}

func rawCSV(bookings []booking) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(models.RawColumns, ","))
	sb.WriteString("\n")
	for i, b := range bookings {
		sb.WriteString(b.record(i))
		sb.WriteString("\n")
	}
	return sb.String()
}

func rawTable(t *testing.T, bookings []booking) *table.Table {
	t.Helper()
	tbl, err := storage.ReadTable(strings.NewReader(rawCSV(bookings)))
	require.NoError(t, err)
	return tbl
}

func newTestCleaner() *Cleaner {
	return NewCleaner(utils.Discard(), DefaultOutlierConfig())
}

// cleanExcept runs every step except the named ones.
func cleanExcept(t *testing.T, c *Cleaner, tbl *table.Table, skip ...string) *table.Table {
	t.Helper()
	var steps []Step
	for _, s := range c.Steps() {
		if !contains(skip, s.Name) {
			steps = append(steps, s)
		}
	}
	out, _, err := c.run(tbl, steps)
	require.NoError(t, err)
	return out
}

// cleanThrough runs the steps up to and including the named one.
func cleanThrough(t *testing.T, c *Cleaner, tbl *table.Table, last string) *table.Table {
	t.Helper()
	var steps []Step
	for _, s := range c.Steps() {
		steps = append(steps, s)
		if s.Name == last {
			break
		}
	}
	require.Equal(t, last, steps[len(steps)-1].Name, "unknown step")
	out, _, err := c.run(tbl, steps)
	require.NoError(t, err)
	return out
}

// rowsByLeadTime indexes the output rows by lead time.
func rowsByLeadTime(t *testing.T, tbl *table.Table) map[int]map[string]float64 {
	t.Helper()
	cols := tbl.Columns()
	numeric := make([][]float64, len(cols))
	for j, c := range cols {
		vals, err := tbl.Floats(c)
		require.NoError(t, err)
		numeric[j] = vals
	}
	lead, err := tbl.Floats(models.ColLeadTime)
	require.NoError(t, err)

	out := make(map[int]map[string]float64, len(lead))
	for i, lt := range lead {
		row := make(map[string]float64, len(cols))
		for j, c := range cols {
			row[c] = numeric[j][i]
		}
		out[int(lt)] = row
	}
	return out
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
