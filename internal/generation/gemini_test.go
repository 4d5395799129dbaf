package generation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

func exampleNoteJSON(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(types.ExampleNote())
	require.NoError(t, err)
	return string(raw)
}

func geminiEnvelope(parts ...map[string]interface{}) map[string]interface{} {
	ps := make([]interface{}, len(parts))
	for i, p := range parts {
		ps[i] = p
	}
	return map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content":      map[string]interface{}{"role": "model", "parts": ps},
				"finishReason": "STOP",
			},
		},
	}
}

func newGeminiTestServer(t *testing.T, handler http.HandlerFunc) (*GeminiClient, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)
	return client, &calls
}

func TestNewGeminiClient_RequiresCredential(t *testing.T) {
	_, err := NewGeminiClient(GeminiConfig{})
	assert.ErrorIs(t, err, types.ErrCredential)
}

func TestGeminiClient_RequestShape(t *testing.T) {
	noteJSON := exampleNoteJSON(t)

	client, _ := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))

		sys := req["systemInstruction"].(map[string]interface{})["parts"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, SystemInstruction, sys["text"])

		contents := req["contents"].([]interface{})
		require.Len(t, contents, 1)
		user := contents[0].(map[string]interface{})
		assert.Equal(t, "user", user["role"])
		assert.Equal(t, "fever and cough", user["parts"].([]interface{})[0].(map[string]interface{})["text"])

		cfg := req["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", cfg["responseMimeType"])
		respSchema := cfg["responseSchema"].(map[string]interface{})
		assert.Equal(t, "OBJECT", respSchema["type"])
		assert.Equal(t, []interface{}{"subjective", "objective", "assessment", "plan"}, respSchema["required"])

		_ = json.NewEncoder(w).Encode(geminiEnvelope(map[string]interface{}{"text": noteJSON}))
	})

	note, err := client.Generate(context.Background(), "fever and cough")
	require.NoError(t, err)
	assert.Equal(t, types.ExampleNote(), note)
}

func TestGeminiClient_ResponseHandling(t *testing.T) {
	noteJSON := exampleNoteJSON(t)

	tests := []struct {
		name     string
		status   int
		body     interface{}
		wantType types.ErrorType
	}{
		{
			name:   "whitespace around JSON is trimmed",
			status: http.StatusOK,
			body:   geminiEnvelope(map[string]interface{}{"text": "\n  " + noteJSON + "  \n"}),
		},
		{
			name:   "text split across parts and thoughts skipped",
			status: http.StatusOK,
			body: geminiEnvelope(
				map[string]interface{}{"text": "thinking about it", "thought": true},
				map[string]interface{}{"text": noteJSON[:20]},
				map[string]interface{}{"text": noteJSON[20:]},
			),
		},
		{
			name:     "prose around JSON",
			status:   http.StatusOK,
			body:     geminiEnvelope(map[string]interface{}{"text": "Here is your note: " + noteJSON}),
			wantType: types.ErrorTypeParse,
		},
		{
			name:     "code fence",
			status:   http.StatusOK,
			body:     geminiEnvelope(map[string]interface{}{"text": "```json\n" + noteJSON + "\n```"}),
			wantType: types.ErrorTypeParse,
		},
		{
			name:     "valid JSON missing a section",
			status:   http.StatusOK,
			body:     geminiEnvelope(map[string]interface{}{"text": `{"subjective":{}}`}),
			wantType: types.ErrorTypeParse,
		},
		{
			name:     "no candidates",
			status:   http.StatusOK,
			body:     map[string]interface{}{"promptFeedback": map[string]interface{}{"blockReason": "SAFETY"}},
			wantType: types.ErrorTypeParse,
		},
		{
			name:     "provider rejects key",
			status:   http.StatusForbidden,
			body:     map[string]interface{}{"error": map[string]interface{}{"code": 403, "message": "API key not valid"}},
			wantType: types.ErrorTypeNetwork,
		},
		{
			name:     "provider rate limit",
			status:   http.StatusTooManyRequests,
			body:     map[string]interface{}{"error": map[string]interface{}{"code": 429}},
			wantType: types.ErrorTypeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			})

			note, err := client.Generate(context.Background(), "transcript")
			if tt.wantType == "" {
				require.NoError(t, err)
				assert.Equal(t, "Fever and dry cough for 3 days.", note.Subjective.ChiefComplaint)
				return
			}
			require.Error(t, err)
			assert.Nil(t, note)
			assert.Equal(t, tt.wantType, types.TypeOf(err))
			if tt.wantType == types.ErrorTypeParse {
				assert.Equal(t, "Failed to parse the response from the AI model.", types.UserMessage(err))
			}
		})
	}
}

func TestGeminiClient_BlankTranscriptMakesNoRequest(t *testing.T) {
	client, calls := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, transcript := range []string{"", "   ", "\n\t"} {
		_, err := client.Generate(context.Background(), transcript)
		assert.ErrorIs(t, err, types.ErrInput)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGeminiClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "transcript")
	assert.ErrorIs(t, err, types.ErrNetwork)
}

func TestGeminiClient_ContextCancelled(t *testing.T) {
	client, _ := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "transcript")
	assert.ErrorIs(t, err, types.ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeNote_KeepsListOrder(t *testing.T) {
	note := types.ExampleNote()
	note.Assessment.DifferentialDiagnoses = []string{"Influenza", "Strep", "Influenza"}
	raw, err := json.Marshal(note)
	require.NoError(t, err)

	decoded, err := DecodeNote(string(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"Influenza", "Strep", "Influenza"}, decoded.Assessment.DifferentialDiagnoses)
}
