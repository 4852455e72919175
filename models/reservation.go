package models

// Raw reservation columns as they appear in the source CSV header.
const (
	ColBookingID             = "Booking_ID"
	ColAdults                = "no_of_adults"
	ColChildren              = "no_of_children"
	ColWeekendNights         = "no_of_weekend_nights"
	ColWeekNights            = "no_of_week_nights"
	ColMealPlan              = "type_of_meal_plan"
	ColParkingSpace          = "required_car_parking_space"
	ColRoomType              = "room_type_reserved"
	ColLeadTime              = "lead_time"
	ColArrivalYear           = "arrival_year"
	ColArrivalMonth          = "arrival_month"
	ColArrivalDate           = "arrival_date"
	ColMarketSegment         = "market_segment_type"
	ColRepeatedGuest         = "repeated_guest"
	ColPreviousCancellations = "no_of_previous_cancellations"
	ColPreviousNotCanceled   = "no_of_previous_bookings_not_canceled"
	ColAvgPricePerRoom       = "avg_price_per_room"
	ColSpecialRequests       = "no_of_special_requests"
	ColBookingStatus         = "booking_status"
	ColWithChildren          = "with_children"
)

// RawColumns is the header of the raw reservations file, in file order.
var RawColumns = []string{
	ColBookingID,
	ColAdults,
	ColChildren,
	ColWeekendNights,
	ColWeekNights,
	ColMealPlan,
	ColParkingSpace,
	ColRoomType,
	ColLeadTime,
	ColArrivalYear,
	ColArrivalMonth,
	ColArrivalDate,
	ColMarketSegment,
	ColRepeatedGuest,
	ColPreviousCancellations,
	ColPreviousNotCanceled,
	ColAvgPricePerRoom,
	ColSpecialRequests,
	ColBookingStatus,
}

// Category values the pipeline treats specially.
const (
	MealPlan3             = "Meal Plan 3"
	RoomType3             = "Room_Type 3"
	SegmentAviation       = "Aviation"
	SegmentComplementary  = "Complementary"
	SegmentAviationFunded = "Aviation_Funded"
	SegmentOnline         = "Online"
	SegmentOffline        = "Offline"
	SegmentCorporate      = "Corporate"
	StatusCanceled        = "Canceled"
)

// IndicatorName returns the one-hot column name for a category of source.
func IndicatorName(source, category string) string {
	return source + "_" + category
}
