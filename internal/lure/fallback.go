package lure

import (
	"context"
	"fmt"
)

// FallbackContent is the static lure used when no model is configured or a
// model call fails. It always carries the placeholder.
func FallbackContent(recipientName string) Content {
	return Content{
		Subject: "Urgent Action Required",
		Body: fmt.Sprintf("Dear %s,\n\n"+
			"Issue detected with your account. Please click below to verify.\n\n"+
			Placeholder+"\n\n"+
			"IT Support Team", recipientName),
	}
}

// FallbackTips is the static awareness text used when tips generation fails.
func FallbackTips() string {
	return "**Understanding Phishing:**\n" +
		"Phishing attacks trick you into revealing sensitive information like passwords or credit card numbers. " +
		"Clicking malicious links or opening attachments can lead to data theft, financial loss, or malware infection.\n\n" +
		"**How to Stay Safe:**\n" +
		"* **Verify Sender:** Always check if the sender's email address looks legitimate.\n" +
		"* **Inspect Links:** Hover over links to see the true web address before clicking.\n" +
		"* **Don't Rush:** Be suspicious of urgent requests for personal information.\n" +
		"* **Report Suspicion:** If an email seems fishy, report it to your IT department."
}

// StaticGenerator serves the fallback content without any model call.
// Used in development and when Bedrock is disabled in config.
type StaticGenerator struct{}

// Generate implements Generator.
func (StaticGenerator) Generate(_ context.Context, _, recipientName string) (Content, error) {
	return FallbackContent(recipientName), nil
}

// Tips implements Generator.
func (StaticGenerator) Tips(context.Context) (string, error) {
	return FallbackTips(), nil
}
