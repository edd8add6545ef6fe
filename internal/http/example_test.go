package http_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/fyrsmithlabs/policybot/internal/assistant"
	httpserver "github.com/fyrsmithlabs/policybot/internal/http"
	"go.uber.org/zap"
)

type echoAssistant struct{}

func (echoAssistant) Upload(_ context.Context, filename string, _ io.Reader) (assistant.UploadResult, error) {
	return assistant.UploadResult{Filename: filename}, nil
}

func (echoAssistant) Ask(_ context.Context, question string) (assistant.Answer, error) {
	return assistant.Answer{Text: "You asked: " + question}, nil
}

// ExampleServer_Handler demonstrates serving the API through its handler.
func ExampleServer_Handler() {
	server, err := httpserver.NewServer(echoAssistant{}, nil, zap.NewNop(), nil)
	if err != nil {
		panic(err)
	}

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.PostForm(ts.URL+"/query", map[string][]string{"question": {"dress code?"}})
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	fmt.Println(resp.StatusCode, string(body))
	// Output: 200 {"response":"You asked: dress code?"}
}
