package lure

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	defaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

	lureSystemPrompt = "You are an AI assistant creating phishing email simulations for security awareness training. " +
		"Generate ONLY the subject line and the email body. Subject on the first line, newline, then body. " +
		"Address the email to the provided name. Include '" + Placeholder + "' for the tracking link placeholder. " +
		"End the email as IT Support Team."

	tipsSystemPrompt = "You are a cybersecurity awareness assistant. Generate a short, easy-to-understand explanation " +
		"about the dangers of phishing and provide 3-5 clear, actionable tips on how to identify and avoid phishing " +
		"emails. Use bullet points for the tips. Keep the total length concise, suitable for display on a web " +
		"confirmation page."
)

// bedrockMessage mirrors the Anthropic messages payload accepted by Bedrock.
type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// BedrockGenerator produces lure content through AWS Bedrock (Claude).
// Any model or transport failure degrades to the static fallback content,
// so a campaign dispatch never depends on model availability.
type BedrockGenerator struct {
	client  *bedrockruntime.Client
	modelID string
}

// BedrockOptions configures the generator. Static credentials are optional;
// with empty keys the default AWS credential chain is used.
type BedrockOptions struct {
	Region    string
	ModelID   string
	AccessKey string
	SecretKey string
}

// NewBedrockGenerator creates a Bedrock-backed content generator.
func NewBedrockGenerator(ctx context.Context, opts BedrockOptions) (*BedrockGenerator, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	log.Printf("[Lure] Bedrock generator initialized (model=%s, region=%s)", opts.ModelID, opts.Region)
	return &BedrockGenerator{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: opts.ModelID,
	}, nil
}

// Generate implements Generator. The first response line is the subject,
// the remainder is the body.
func (g *BedrockGenerator) Generate(ctx context.Context, scenario, recipientName string) (Content, error) {
	userPrompt := fmt.Sprintf("Scenario: '%s'. Recipient: %s.", scenario, recipientName)

	text, err := g.invoke(ctx, lureSystemPrompt, userPrompt, 500, 0.9)
	if err != nil {
		log.Printf("[Lure] Bedrock generation failed, using fallback content: %v", err)
		return FallbackContent(recipientName), nil
	}

	return parseLure(text), nil
}

// Tips implements Generator.
func (g *BedrockGenerator) Tips(ctx context.Context) (string, error) {
	text, err := g.invoke(ctx, tipsSystemPrompt, "Provide phishing dangers explanation and avoidance tips.", 400, 0.7)
	if err != nil {
		log.Printf("[Lure] Bedrock tips generation failed, using fallback: %v", err)
		return FallbackTips(), nil
	}
	return text, nil
}

func (g *BedrockGenerator) invoke(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	request := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		System:           system,
		Temperature:      temperature,
		Messages: []bedrockMessage{
			{Role: "user", Content: []bedrockContentBlock{{Type: "text", Text: user}}},
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	output, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return "", fmt.Errorf("Bedrock API error: %w", err)
	}

	var response bedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	var text strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty model response (stop_reason=%s)", response.StopReason)
	}
	return strings.TrimSpace(text.String()), nil
}

// parseLure splits model output into subject and body. A leading "Subject:"
// prefix on the first line is stripped.
func parseLure(text string) Content {
	parts := strings.SplitN(strings.TrimSpace(text), "\n", 2)

	subject := strings.TrimSpace(strings.TrimPrefix(parts[0], "Subject:"))
	if subject == "" {
		subject = "Important Action Required"
	}

	body := text
	if len(parts) > 1 {
		body = strings.TrimSpace(parts[1])
	}
	return Content{Subject: subject, Body: body}
}
