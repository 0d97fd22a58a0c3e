package domain

type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// Airports is the fixed list of origins and destinations offered to clients.
var Airports = []Airport{
	{"LAX", "Los Angeles International", "Los Angeles"},
	{"JFK", "John F. Kennedy International", "New York"},
	{"SFO", "San Francisco International", "San Francisco"},
	{"MIA", "Miami International", "Miami"},
	{"BOS", "Logan International", "Boston"},
	{"ORD", "O'Hare International", "Chicago"},
	{"DFW", "Dallas/Fort Worth International", "Dallas"},
	{"ATL", "Hartsfield-Jackson Atlanta International", "Atlanta"},
	{"DEN", "Denver International", "Denver"},
	{"SEA", "Seattle-Tacoma International", "Seattle"},
	{"LAS", "Harry Reid International", "Las Vegas"},
	{"PHX", "Phoenix Sky Harbor International", "Phoenix"},
	{"IAH", "George Bush Intercontinental", "Houston"},
	{"MCO", "Orlando International", "Orlando"},
	{"CLT", "Charlotte Douglas International", "Charlotte"},
}
