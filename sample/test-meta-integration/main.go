package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
	"github.com/canalzap/waba-gateway/internal/usecase"
)

// Manual smoke test: runs the validation engine over a sample template and,
// when Graph API credentials are present, sends a real text message.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found, using system environment")
	}

	input := usecase.CreateTemplateInput{
		Name:         "smoke_test_template",
		Category:     "MARKETING",
		Language:     "en_US",
		BodyText:     "Hi {{1}}, this is a connectivity check.",
		BodyExamples: []string{"Ana"},
		FooterText:   "Reply STOP to opt out",
	}

	verdict := usecase.ValidateCompleteTemplate(usecase.BuildTemplate(input))
	if verdict.IsValid {
		fmt.Println("✅ Sample template passed validation")
	} else {
		fmt.Println("❌ Sample template failed validation:")
		for _, e := range verdict.Errors {
			fmt.Printf("   - %s\n", e)
		}
	}

	token := os.Getenv("META_ACCESS_TOKEN")
	phoneID := os.Getenv("META_PHONE_NUMBER_ID")
	recipient := os.Getenv("TEST_RECIPIENT")
	if token == "" || phoneID == "" || recipient == "" {
		fmt.Println("ℹ️  META_ACCESS_TOKEN, META_PHONE_NUMBER_ID and TEST_RECIPIENT not all set, skipping live send")
		return
	}

	version := os.Getenv("WHATSAPP_API_VERSION")
	if version == "" {
		version = "v22.0"
	}
	client := meta.NewClient(token, phoneID, os.Getenv("META_BUSINESS_ACCOUNT_ID"), "https://graph.facebook.com/"+version)

	fmt.Printf("🔄 Sending test message to %s...\n", recipient)
	wamid, err := client.SendMessage(context.Background(), meta.MessagePayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               recipient,
		Type:             "text",
		Text:             &meta.TextContent{Body: "waba-gateway connectivity check"},
	})
	if err != nil {
		log.Fatalf("Send failed: %v", err)
	}

	fmt.Printf("Message sent! \n")
	fmt.Printf(" wamid: %s\n", wamid)
}
