package models

import "testing"

func TestNormalizeTopic(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"#ElectionNight2024", "ElectionNight"},
		{"NBA 176K", "NBA"},
		{"Bitcoin 2M", "Bitcoin"},
		{"#WorldCup", "WorldCup"},
		{"Taylor Swift", "Taylor Swift"},
		{"  spaced  ", "spaced"},
		{"12345", ""},
	}

	for _, tc := range cases {
		if got := NormalizeTopic(tc.raw); got != tc.want {
			t.Errorf("NormalizeTopic(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestTopicTitle(t *testing.T) {
	if got := TopicTitle("Taylor Swift 10K"); got != "Taylor_Swift" {
		t.Errorf("TopicTitle = %q", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Sports", "Sports"},
		{"sports", "Sports"},
		{"  TECHNOLOGY ", "Technology"},
		{"Sportsball", "Culture"},
		{"", "Culture"},
	}

	for _, tc := range cases {
		if got := NormalizeCategory(tc.raw); got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestMatchCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Sports", "Sports"},
		{"sports", "Sports"},
		{"Gaming News", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := MatchCategory(tc.raw); got != tc.want {
			t.Errorf("MatchCategory(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSessionStatusProgress(t *testing.T) {
	s := NewSession()
	if s.Status().ProgressPercentage != 0 {
		t.Error("empty session progress must be 0")
	}

	s.Topics = []string{"a", "b", "c", "d"}
	s.Total = 4
	s.Cursor = 1
	if got := s.Status().ProgressPercentage; got != 25 {
		t.Errorf("expected progress 25, got %f", got)
	}
}
