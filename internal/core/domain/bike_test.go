package domain

import (
	"encoding/json"
	"testing"
)

func TestBike_Consistent(t *testing.T) {
	cases := []struct {
		name string
		bike Bike
		want bool
	}{
		{"available and unbooked", Bike{IsAvailable: true}, true},
		{"booked and unavailable", Bike{IsAvailable: false, BookedBy: "bob"}, true},
		{"booked but available", Bike{IsAvailable: true, BookedBy: "bob"}, false},
		{"unavailable with no booker", Bike{IsAvailable: false}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bike.Consistent(); got != tc.want {
				t.Fatalf("Consistent() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBike_WireFormat(t *testing.T) {
	b := Bike{ID: "a1", Model: "Road Bike", ModelYear: 2022, RentRate: 30, IsAvailable: true}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"bikeId", "model", "modelYear", "rentRate", "isAvailable"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	// Empty optional fields are omitted; the ordering field never leaves the
	// process.
	for _, key := range []string{"bookedBy", "photoUrl", "seq", "Seq"} {
		if _, ok := m[key]; ok {
			t.Fatalf("unexpected key %q in %s", key, data)
		}
	}
}
