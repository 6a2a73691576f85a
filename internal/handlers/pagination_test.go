package handlers

import "testing"

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int64
		wantLimit int64
		wantErr   bool
	}{
		{name: "defaults", wantPage: 1, wantLimit: 20},
		{name: "explicit values", page: "3", limit: "50", wantPage: 3, wantLimit: 50},
		{name: "limit capped", page: "1", limit: "5000", wantPage: 1, wantLimit: 100},
		{name: "zero page rejected", page: "0", wantErr: true},
		{name: "negative limit rejected", limit: "-5", wantErr: true},
		{name: "non-numeric rejected", page: "abc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, limit, err := parsePaginationParams(tc.page, tc.limit)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page != tc.wantPage || limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want %d/%d", page, limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}
