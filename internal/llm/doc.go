// Package llm asks a Gemini model to find a password in archive comment text.
//
// # Basic Usage
//
//	client := llm.NewGeminiClient(settings.APIKey)
//	extractor := llm.NewExtractor(client, settings.Model, logger)
//
//	password, err := extractor.ExtractPassword(ctx, comment)
//	if err != nil {
//	    // The request failed; treat as "no password".
//	}
//	if password == "" {
//	    // The model found nothing.
//	}
//
// The model answers with the literal text NO_PASSWORD_FOUND when the
// comment holds no password; ExtractPassword reports that as "".
//
// One request is made per call. There are no retries and no timeout
// beyond what the caller's context imposes.
package llm
