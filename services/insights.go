package services

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hotel-reservations/models"
	"hotel-reservations/table"
	"hotel-reservations/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises the cleaned table and the run that produced it.
// Columns absent from the table leave their statistics at zero.
func (s *InsightService) Generate(cleaned *table.Table, run *models.RunReport) *models.InsightReport {
	report := &models.InsightReport{
		OutputRows: cleaned.Rows(),
		Columns:    cleaned.Columns(),
	}
	if run != nil {
		report.InputRows = run.InputRows
		for _, st := range run.Steps {
			if st.Dropped() > 0 {
				report.DroppedByStep = append(report.DroppedByStep, st)
			}
		}
	}
	if cleaned.Rows() == 0 {
		return report
	}

	if status, err := cleaned.Floats(models.ColBookingStatus); err == nil {
		report.CancellationRate = round2(stat.Mean(status, nil) * 100)
	} else {
		s.logger.Warn("[insights] %v", err)
	}
	if kids, err := cleaned.Floats(models.ColWithChildren); err == nil {
		report.WithChildrenRate = round2(stat.Mean(kids, nil) * 100)
	}

	prices, err := cleaned.Floats(models.ColAvgPricePerRoom)
	if err != nil {
		s.logger.Warn("[insights] %v", err)
		return report
	}
	prices = dropNaN(prices)
	if len(prices) == 0 {
		return report
	}
	mean, std := stat.MeanStdDev(prices, nil)
	report.AveragePrice = round2(mean)
	if !math.IsNaN(std) {
		report.PriceStdDev = round2(std)
	}
	report.MinPrice = round2(floats.Min(prices))
	report.MaxPrice = round2(floats.Max(prices))
	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 HOTEL RESERVATIONS CLEANING SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Rows read       : \033[1m%d\033[0m\n", r.InputRows)
	fmt.Printf("  Rows kept       : \033[1m%d\033[0m\n", r.OutputRows)
	fmt.Printf("  Output columns  : \033[1m%d\033[0m\n", len(r.Columns))
	fmt.Println()

	fmt.Printf("\033[1;33m  Rows dropped by step\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.DroppedByStep) == 0 {
		fmt.Printf("  No rows dropped\n")
	} else {
		for _, st := range r.DroppedByStep {
			fmt.Printf("  %02d %-45s \033[1;31m%6d\033[0m\n", st.Index, truncate(st.Name, 45), st.Dropped())
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Bookings\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Cancellation rate : \033[1;32m%.2f%%\033[0m\n", r.CancellationRate)
	fmt.Printf("  With children     : \033[1;32m%.2f%%\033[0m\n", r.WithChildrenRate)
	fmt.Println()

	fmt.Printf("\033[1;33m  Average price per room\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.MaxPrice > 0 {
		fmt.Printf("  Mean    : \033[1;32m%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Std dev : \033[1;32m%.2f\033[0m\n", r.PriceStdDev)
		fmt.Printf("  Minimum : \033[1;32m%.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum : \033[1;32m%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func dropNaN(xs []float64) []float64 {
	out := xs[:0:0]
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
