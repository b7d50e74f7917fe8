// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"sentiment\":\"positive\",\"justification\":\"elogio claro\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 50, "completion_tokens": 12, "total_tokens": 62}
		}`)
	}))
	defer srv.Close()

	c := &openAIClient{
		client: openai.NewClient(
			option.WithAPIKey("test-key"),
			option.WithBaseURL(srv.URL+"/"),
		),
		model:       "gpt-4o-mini",
		maxTokens:   300,
		temperature: 0.3,
	}

	raw, usage, err := c.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(raw, `"sentiment":"positive"`) {
		t.Errorf("unexpected reply: %s", raw)
	}
	if usage.InputTokens != 50 || usage.OutputTokens != 12 {
		t.Errorf("unexpected usage: %+v", usage)
	}

	payload, err := parseCompare(raw)
	if err != nil {
		t.Fatalf("reply should parse as a compare payload: %v", err)
	}
	if payload.Sentiment != "positive" {
		t.Errorf("sentiment = %q, want positive", payload.Sentiment)
	}
}
