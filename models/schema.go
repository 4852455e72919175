package models

import "fmt"

// ReducedFeatures is the 17 column feature set the current model is trained on.
var ReducedFeatures = []string{
	"lead_time",
	"avg_price_per_room",
	"arrival_date",
	"arrival_month",
	"no_of_special_requests_1",
	"no_of_special_requests_2+",
	"market_segment_type_Online",
	"no_of_weekend_nights_1",
	"no_of_weekend_nights_2",
	"type_of_meal_plan_Not Selected",
	"room_type_reserved_Room_Type 5",
	"no_of_week_nights_3",
	"arrival_year",
	"type_of_meal_plan_Meal Plan 2",
	"no_of_adults",
	"room_type_reserved_Room_Type 6",
	"room_type_reserved_Room_Type 4",
}

// FullFeatures is the column list accepted by the first model revision,
// which was trained on an encoding without baseline columns dropped.
var FullFeatures = []string{
	"no_of_adults", "lead_time", "arrival_year", "arrival_month",
	"arrival_date", "avg_price_per_room", "type_of_meal_plan_Meal Plan 1",
	"type_of_meal_plan_Meal Plan 2", "type_of_meal_plan_Meal Plan 3",
	"room_type_reserved_Room_Type 1", "room_type_reserved_Room_Type 2",
	"room_type_reserved_Room_Type 3", "room_type_reserved_Room_Type 4",
	"room_type_reserved_Room_Type 5", "room_type_reserved_Room_Type 6",
	"market_segment_type_Aviation", "market_segment_type_Complementary",
	"market_segment_type_Corporate", "market_segment_type_Offline",
	"with_children", "no_of_weekend_nights_0", "no_of_weekend_nights_1",
	"no_of_weekend_nights_2", "no_of_week_nights_0", "no_of_week_nights_1",
	"no_of_week_nights_2", "no_of_week_nights_3", "no_of_week_nights_4",
	"no_of_week_nights_5", "no_of_special_requests_0",
	"no_of_special_requests_1",
}

// Schema names accepted by FeatureSchema.
const (
	SchemaReduced = "reduced"
	SchemaFull    = "full"
)

// FeatureSchema returns a copy of the named feature column list.
func FeatureSchema(name string) ([]string, error) {
	var cols []string
	switch name {
	case SchemaReduced, "":
		cols = ReducedFeatures
	case SchemaFull:
		cols = FullFeatures
	default:
		return nil, fmt.Errorf("models: unknown feature schema %q", name)
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, nil
}
