package app

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{name: "plain date", input: "2024-03-15", want: tp(2024, time.March, 15)},
		{name: "rfc3339", input: "2024-03-15T10:30:00Z", want: tp(2024, time.March, 15)},
		{name: "empty", input: "", want: nil},
		{name: "malformed", input: "15/03/2024", want: nil},
		{name: "garbage", input: "not-a-date", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got == nil {
				return
			}
			if got.Year() != tt.want.Year() || got.Month() != tt.want.Month() || got.Day() != tt.want.Day() {
				t.Errorf("parseDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func tp(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCheckRequest(t *testing.T) {
	t.Run("valid create user", func(t *testing.T) {
		err := checkRequest(CreateUserRequest{
			Name: "Dana", Email: "dana@studio.test", Password: "longenough", Role: "admin",
		})
		if err != nil {
			t.Errorf("expected valid request, got %v", err)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		err := checkRequest(CreateUserRequest{
			Name: "Dana", Email: "dana@studio.test", Password: "short",
		})
		if err == nil {
			t.Error("expected validation error for short password")
		}
	})

	t.Run("bad service type rejected", func(t *testing.T) {
		err := checkRequest(CreateProjectRequest{
			ClientID:    "0d4cd7dc-3f42-4e14-9f08-2f1f2f1f2f1f",
			Title:       "Thing",
			ServiceType: "consulting",
		})
		if err == nil {
			t.Error("expected validation error for unknown service type")
		}
	})
}
