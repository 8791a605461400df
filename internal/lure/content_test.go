package lure

import (
	"strings"
	"testing"
)

func TestEnsurePlaceholder(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantAppend bool
	}{
		{"placeholder present", "Hi,\n\nVerify here: {{TRACKING_LINK}}\n\nIT", false},
		{"placeholder missing", "Hi,\n\nVerify your account now.\n\nIT", true},
		{"empty body", "", true},
		{"placeholder present twice", "{{TRACKING_LINK}} and {{TRACKING_LINK}}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnsurePlaceholder(tt.body)
			if !strings.Contains(got, Placeholder) {
				t.Fatalf("EnsurePlaceholder() result lacks placeholder: %q", got)
			}
			appended := got != tt.body
			if appended != tt.wantAppend {
				t.Errorf("EnsurePlaceholder() appended = %v, want %v", appended, tt.wantAppend)
			}
		})
	}
}

func TestRenderBody(t *testing.T) {
	body := "Dear Jo,\nClick: {{TRACKING_LINK}}\nThanks"
	got := RenderBody(body, "http://localhost:8080/track/abc")

	want := `Dear Jo,<br>Click: <a href="http://localhost:8080/track/abc">http://localhost:8080/track/abc</a><br>Thanks`
	if got != want {
		t.Errorf("RenderBody() = %q, want %q", got, want)
	}
}

func TestRenderBodyReplacesEveryOccurrence(t *testing.T) {
	body := "{{TRACKING_LINK}} or {{TRACKING_LINK}}"
	got := RenderBody(body, "http://x/track/t")

	if strings.Contains(got, Placeholder) {
		t.Errorf("RenderBody() left a placeholder behind: %q", got)
	}
	if n := strings.Count(got, `<a href="http://x/track/t">`); n != 2 {
		t.Errorf("RenderBody() anchor count = %d, want 2", n)
	}
}

func TestFallbackContentCarriesPlaceholder(t *testing.T) {
	c := FallbackContent("Jamie")
	if !strings.Contains(c.Body, Placeholder) {
		t.Error("FallbackContent() body lacks placeholder")
	}
	if !strings.Contains(c.Body, "Jamie") {
		t.Error("FallbackContent() body does not address the recipient")
	}
	if c.Subject == "" {
		t.Error("FallbackContent() subject is empty")
	}
}

func TestParseLure(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantSubject string
		wantBody    string
	}{
		{
			name:        "subject prefix stripped",
			text:        "Subject: Verify Now\nDear user,\nclick here.",
			wantSubject: "Verify Now",
			wantBody:    "Dear user,\nclick here.",
		},
		{
			name:        "plain first line",
			text:        "Account Notice\nBody text.",
			wantSubject: "Account Notice",
			wantBody:    "Body text.",
		},
		{
			name:        "single line falls back",
			text:        "Just one line",
			wantSubject: "Just one line",
			wantBody:    "Just one line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLure(tt.text)
			if got.Subject != tt.wantSubject {
				t.Errorf("subject = %q, want %q", got.Subject, tt.wantSubject)
			}
			if got.Body != tt.wantBody {
				t.Errorf("body = %q, want %q", got.Body, tt.wantBody)
			}
		})
	}
}

func TestMarkupToHTML(t *testing.T) {
	markup := "**Key Tips:**\n" +
		"* Check the **sender** address.\n" +
		"* Hover over links.\n" +
		"\n" +
		"Stay cautious."
	got := MarkupToHTML(markup)

	for _, want := range []string{
		"<p><strong>Key Tips:</strong></p>",
		"<ul><li>Check the <strong>sender</strong> address.</li><li>Hover over links.</li></ul>",
		"<p>Stay cautious.</p>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("MarkupToHTML() = %q, missing %q", got, want)
		}
	}
}

func TestMarkupToHTMLEscapesInput(t *testing.T) {
	got := MarkupToHTML("<script>alert(1)</script>")
	if strings.Contains(got, "<script>") {
		t.Errorf("MarkupToHTML() did not escape HTML: %q", got)
	}
}

func TestMarkupToHTMLUnpairedBold(t *testing.T) {
	got := MarkupToHTML("half **bold")
	if strings.Contains(got, "<strong>") {
		t.Errorf("MarkupToHTML() invented a strong tag: %q", got)
	}
}
