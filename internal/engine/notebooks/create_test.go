package notebooks

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare domain", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link trailing slash", "https://youtu.be/dQw4w9WgXcQ/", "dQw4w9WgXcQ"},
		{"extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) = %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("video id = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractVideoIDRejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"http scheme", "http://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"wrong host", "https://vimeo.com/watch?v=dQw4w9WgXcQ"},
		{"lookalike host", "https://youtube.com.evil.com/watch?v=dQw4w9WgXcQ"},
		{"missing v param", "https://www.youtube.com/watch"},
		{"short id", "https://www.youtube.com/watch?v=short"},
		{"long id", "https://www.youtube.com/watch?v=dQw4w9WgXcQextra"},
		{"id with bad chars", "https://www.youtube.com/watch?v=dQw4w9WgXc!"},
		{"short link no id", "https://youtu.be/"},
		{"short link nested path", "https://youtu.be/dQw4w9WgXcQ/extra"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractVideoID(tt.url); err == nil {
				t.Errorf("ExtractVideoID(%q) accepted, want rejection", tt.url)
			}
		})
	}
}

func TestIsValidYouTubeURL(t *testing.T) {
	if !IsValidYouTubeURL("https://youtu.be/dQw4w9WgXcQ") {
		t.Error("expected valid")
	}
	if IsValidYouTubeURL("https://evil.com/watch?v=dQw4w9WgXcQ") {
		t.Error("expected invalid")
	}
}
