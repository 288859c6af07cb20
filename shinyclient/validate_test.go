package shinyclient

import "testing"

func TestValidEntityName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"products", true},
		{"_private", true},
		{"order_items_2024", true},
		{"", false},
		{"2fast", false},
		{"has-dash", false},
		{"has space", false},
	}
	for _, tc := range cases {
		if got := ValidEntityName(tc.name); got != tc.want {
			t.Errorf("ValidEntityName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidEntityName_MaxLength(t *testing.T) {
	long := make([]byte, maxEntityName+1)
	for i := range long {
		long[i] = 'a'
	}
	if ValidEntityName(string(long)) {
		t.Errorf("expected name of length %d to be invalid", len(long))
	}
}

func TestValidateEntityName(t *testing.T) {
	if err := validateEntityName("products"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validateEntityName("bad name"); err == nil {
		t.Error("expected an error for an invalid name")
	}
}
